package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mediaflow/node"
)

func TestDefault_ContainsCatalogModels(t *testing.T) {
	r := Default()

	expected := []string{
		"fal-ai/aura-sr",
		"fal-ai/birefnet",
		"fal-ai/flux/dev",
		"fal-ai/flux/dev/image-to-image",
		"fal-ai/flux/schnell",
		"fal-ai/hunyuan3d/v2",
		"fal-ai/kling-video/v1.6/standard/image-to-video",
		"fal-ai/kling-video/v1.6/standard/text-to-video",
		"fal-ai/sam2/auto-segment",
		"fal-ai/triposr",
	}
	assert.Equal(t, expected, r.List())
}

func TestRegister_AllSpecsValid(t *testing.T) {
	// MustRegister 会在表项非法时 panic，整表注册不炸即为合法。
	assert.NotPanics(t, func() {
		Register(node.NewRegistry())
	})
}

func TestCatalog_SchemaDocsRender(t *testing.T) {
	r := Default()
	for _, model := range r.List() {
		spec, ok := r.Get(model)
		require.True(t, ok)

		doc := spec.SchemaDoc()
		assert.Equal(t, model, doc["model"], model)
		assert.NotEmpty(t, doc["name"], model)
		assert.NotEmpty(t, doc["kind"], model)
		assert.NotEmpty(t, doc["outputs"], model)
	}
}

func TestCatalog_DefaultParamsNormalize(t *testing.T) {
	// 每个模型仅提供必填参数即可得到完整参数集。
	r := Default()
	for _, model := range r.List() {
		spec, _ := r.Get(model)

		raw := map[string]any{}
		for _, p := range spec.Params {
			if p.Required && p.Default == nil && p.Kind == node.ParamString {
				raw[p.Name] = "test prompt"
			}
		}

		params, err := node.NormalizeParams(spec.Params, raw)
		require.NoError(t, err, model)

		if spec.EstimateDuration != nil {
			assert.Greater(t, spec.EstimateDuration(params), time.Duration(0), model)
		}
	}
}

func TestDurationHeuristics(t *testing.T) {
	t.Run("image scales with steps and count", func(t *testing.T) {
		est := perStepPerImage(400*time.Millisecond, 28, 1)

		assert.Equal(t, 28*400*time.Millisecond, est(map[string]any{}))
		assert.Equal(t, 10*400*time.Millisecond, est(map[string]any{"num_inference_steps": 10}))
		assert.Equal(t, 2*28*400*time.Millisecond, est(map[string]any{"num_images": 2}))
	})

	t.Run("video scales with clip length", func(t *testing.T) {
		est := perVideoSecond(40*time.Second, 5)

		assert.Equal(t, 200*time.Second, est(map[string]any{}))
		assert.Equal(t, 400*time.Second, est(map[string]any{"duration": "10"}))
	})

	t.Run("textured mesh reconstruction is slower", func(t *testing.T) {
		r := Default()
		spec, ok := r.Get("fal-ai/hunyuan3d/v2")
		require.True(t, ok)

		plain := spec.EstimateDuration(map[string]any{"textured_mesh": false})
		textured := spec.EstimateDuration(map[string]any{"textured_mesh": true})
		assert.Greater(t, textured, plain)
	})
}

func TestHunyuan3D_DecodeResult(t *testing.T) {
	r := Default()
	spec, ok := r.Get("fal-ai/hunyuan3d/v2")
	require.True(t, ok)

	files, err := spec.DecodeResult([]byte(`{
		"model_mesh": {"url": "https://cdn.example/mesh.glb", "content_type": "model/gltf-binary", "file_size": 1024}
	}`))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "model_mesh", files[0].Slot)
	assert.Equal(t, "https://cdn.example/mesh.glb", files[0].URL)
	assert.Equal(t, int64(1024), files[0].Bytes)

	_, err = spec.DecodeResult([]byte(`{}`))
	assert.Error(t, err)
}
