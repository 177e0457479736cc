package catalog

import (
	"fmt"
	"time"

	"github.com/BaSui01/mediaflow/assets"
	"github.com/BaSui01/mediaflow/node"
	"github.com/BaSui01/mediaflow/progress"
)

// imageSizes 是图像端点共用的画幅枚举。
var imageSizes = []string{
	"square_hd", "square",
	"portrait_4_3", "portrait_16_9",
	"landscape_4_3", "landscape_16_9",
}

func registerImageModels(r *node.Registry) {
	r.MustRegister(fluxDev())
	r.MustRegister(fluxSchnell())
	r.MustRegister(fluxImageToImage())
	r.MustRegister(auraSR())
}

// 扩散采样日志自带百分比，原样透传比合成文案更有用。
var samplerMilestones = []progress.Milestone{
	{Match: "%"},
}

func fluxDev() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/flux/dev",
		Name:        "FLUX.1 [dev]",
		Description: "Text-to-image generation tuned for quality.",
		Kind:        assets.KindImage,
		Endpoint:    "fal-ai/flux/dev",
		Params: []node.ParamSpec{
			{Name: "prompt", Kind: node.ParamString, Required: true},
			{Name: "image_size", Kind: node.ParamEnum, Default: "landscape_4_3", Enum: imageSizes},
			{Name: "num_inference_steps", Kind: node.ParamInt, Default: 28, Min: node.Ptr(1), Max: node.Ptr(50)},
			{Name: "guidance_scale", Kind: node.ParamFloat, Default: 3.5, Min: node.Ptr(0), Max: node.Ptr(20)},
			{Name: "num_images", Kind: node.ParamInt, Default: 1, Min: node.Ptr(1), Max: node.Ptr(4)},
			{Name: "seed", Kind: node.ParamInt},
			{Name: "enable_safety_checker", Kind: node.ParamBool, Default: true},
		},
		Outputs: []node.OutputSpec{
			{Name: "images", Kind: assets.KindImage},
		},
		QueueMessage:      "Waiting for a GPU worker...",
		FinalizingMessage: "Fetching images...",
		StepMessage: func(step int) string {
			return fmt.Sprintf("Rendering... %d%%", step)
		},
		Milestones:       samplerMilestones,
		EstimateDuration: perStepPerImage(400*time.Millisecond, 28, 1),
	}
}

func fluxSchnell() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/flux/schnell",
		Name:        "FLUX.1 [schnell]",
		Description: "Fast text-to-image generation in a handful of steps.",
		Kind:        assets.KindImage,
		Endpoint:    "fal-ai/flux/schnell",
		Params: []node.ParamSpec{
			{Name: "prompt", Kind: node.ParamString, Required: true},
			{Name: "image_size", Kind: node.ParamEnum, Default: "landscape_4_3", Enum: imageSizes},
			{Name: "num_inference_steps", Kind: node.ParamInt, Default: 4, Min: node.Ptr(1), Max: node.Ptr(12)},
			{Name: "num_images", Kind: node.ParamInt, Default: 1, Min: node.Ptr(1), Max: node.Ptr(4)},
			{Name: "seed", Kind: node.ParamInt},
			{Name: "enable_safety_checker", Kind: node.ParamBool, Default: true},
		},
		Outputs: []node.OutputSpec{
			{Name: "images", Kind: assets.KindImage},
		},
		QueueMessage:      "Waiting for a GPU worker...",
		FinalizingMessage: "Fetching images...",
		Milestones:        samplerMilestones,
		EstimateDuration:  perStepPerImage(700*time.Millisecond, 4, 1),
	}
}

func fluxImageToImage() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/flux/dev/image-to-image",
		Name:        "FLUX.1 [dev] Image-to-Image",
		Description: "Restyle an input image guided by a prompt.",
		Kind:        assets.KindImage,
		Endpoint:    "fal-ai/flux/dev/image-to-image",
		Inputs: []node.InputSpec{
			{Name: "image_url", Kind: assets.KindImage, Required: true, Description: "Source image to restyle."},
		},
		Params: []node.ParamSpec{
			{Name: "prompt", Kind: node.ParamString, Required: true},
			{Name: "strength", Kind: node.ParamFloat, Default: 0.95, Min: node.Ptr(0), Max: node.Ptr(1)},
			{Name: "num_inference_steps", Kind: node.ParamInt, Default: 40, Min: node.Ptr(1), Max: node.Ptr(50)},
			{Name: "guidance_scale", Kind: node.ParamFloat, Default: 3.5, Min: node.Ptr(0), Max: node.Ptr(20)},
			{Name: "num_images", Kind: node.ParamInt, Default: 1, Min: node.Ptr(1), Max: node.Ptr(4)},
			{Name: "seed", Kind: node.ParamInt},
		},
		Outputs: []node.OutputSpec{
			{Name: "images", Kind: assets.KindImage},
		},
		QueueMessage:      "Waiting for a GPU worker...",
		FinalizingMessage: "Fetching images...",
		Milestones:        samplerMilestones,
		EstimateDuration:  perStepPerImage(400*time.Millisecond, 40, 1),
	}
}

func auraSR() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/aura-sr",
		Name:        "AuraSR Upscaler",
		Description: "4x GAN upscaler for generated images.",
		Kind:        assets.KindImage,
		Endpoint:    "fal-ai/aura-sr",
		Inputs: []node.InputSpec{
			{Name: "image_url", Kind: assets.KindImage, Required: true, Description: "Image to upscale."},
		},
		Params: []node.ParamSpec{
			{Name: "upscaling_factor", Kind: node.ParamInt, Default: 4, Min: node.Ptr(4), Max: node.Ptr(4)},
			{Name: "overlapping_tiles", Kind: node.ParamBool, Default: false},
		},
		Outputs: []node.OutputSpec{
			{Name: "image", Kind: assets.KindImage},
		},
		QueueMessage:      "Waiting for a GPU worker...",
		FinalizingMessage: "Fetching upscaled image...",
		EstimateDuration:  fixedDuration(12 * time.Second),
	}
}
