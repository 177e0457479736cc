package catalog

import "github.com/BaSui01/mediaflow/node"

// Register adds every catalog model to the registry.
func Register(r *node.Registry) {
	registerImageModels(r)
	registerVideoModels(r)
	registerThreeDModels(r)
	registerSegmentationModels(r)
}

// Default returns a registry populated with the full catalog.
func Default() *node.Registry {
	r := node.NewRegistry()
	Register(r)
	return r
}
