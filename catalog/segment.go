package catalog

import (
	"time"

	"github.com/BaSui01/mediaflow/assets"
	"github.com/BaSui01/mediaflow/node"
)

func registerSegmentationModels(r *node.Registry) {
	r.MustRegister(sam2AutoSegment())
	r.MustRegister(birefnet())
}

func sam2AutoSegment() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/sam2/auto-segment",
		Name:        "SAM 2 Auto Segment",
		Description: "Segment every object in an image into masks.",
		Kind:        assets.KindMask,
		Endpoint:    "fal-ai/sam2/auto-segment",
		Inputs: []node.InputSpec{
			{Name: "image_url", Kind: assets.KindImage, Required: true, Description: "Image to segment."},
		},
		Params: []node.ParamSpec{
			{Name: "points_per_side", Kind: node.ParamInt, Default: 32, Min: node.Ptr(1), Max: node.Ptr(64)},
			{Name: "pred_iou_thresh", Kind: node.ParamFloat, Default: 0.88, Min: node.Ptr(0), Max: node.Ptr(1)},
			{Name: "stability_score_thresh", Kind: node.ParamFloat, Default: 0.95, Min: node.Ptr(0), Max: node.Ptr(1)},
			{Name: "min_mask_region_area", Kind: node.ParamInt, Default: 0, Min: node.Ptr(0), Max: node.Ptr(10000)},
		},
		// 掩码数量取决于图像内容，槽位按 masks、masks_1... 展开。
		Outputs: []node.OutputSpec{
			{Name: "masks", Kind: assets.KindMask},
		},
		QueueMessage:      "Waiting for a segmentation worker...",
		FinalizingMessage: "Fetching masks...",
		EstimateDuration:  fixedDuration(20 * time.Second),
	}
}

func birefnet() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/birefnet",
		Name:        "BiRefNet Background Removal",
		Description: "High-resolution foreground matting.",
		Kind:        assets.KindImage,
		Endpoint:    "fal-ai/birefnet",
		Inputs: []node.InputSpec{
			{Name: "image_url", Kind: assets.KindImage, Required: true, Description: "Image to matte."},
		},
		Params: []node.ParamSpec{
			{Name: "model", Kind: node.ParamEnum, Default: "General Use (Light)",
				Enum: []string{"General Use (Light)", "General Use (Heavy)", "Portrait"}},
			{Name: "operating_resolution", Kind: node.ParamEnum, Default: "1024x1024",
				Enum: []string{"1024x1024", "2048x2048"}},
			{Name: "output_format", Kind: node.ParamEnum, Default: "png", Enum: []string{"png", "webp"}},
			{Name: "output_mask", Kind: node.ParamBool, Default: false},
		},
		Outputs: []node.OutputSpec{
			{Name: "image", Kind: assets.KindImage, Description: "Foreground cutout."},
			{Name: "mask_image", Kind: assets.KindMask, Description: "Alpha mask, present when output_mask is set."},
		},
		QueueMessage:      "Waiting for a segmentation worker...",
		FinalizingMessage: "Fetching cutout...",
		EstimateDuration:  fixedDuration(8 * time.Second),
	}
}
