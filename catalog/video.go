package catalog

import (
	"fmt"
	"time"

	"github.com/BaSui01/mediaflow/assets"
	"github.com/BaSui01/mediaflow/node"
	"github.com/BaSui01/mediaflow/progress"
)

func registerVideoModels(r *node.Registry) {
	r.MustRegister(klingTextToVideo())
	r.MustRegister(klingImageToVideo())
}

var videoMilestones = []progress.Milestone{
	{Match: "motion", Message: "Synthesizing motion..."},
	{Match: "upscal", Message: "Upscaling frames..."},
	{Match: "encod", Message: "Encoding video..."},
}

func videoStepMessage(step int) string {
	return fmt.Sprintf("Generating video... %d%%", step)
}

func klingTextToVideo() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/kling-video/v1.6/standard/text-to-video",
		Name:        "Kling 1.6 Text-to-Video",
		Description: "Text-to-video generation, 5 or 10 second clips.",
		Kind:        assets.KindVideo,
		Endpoint:    "fal-ai/kling-video/v1.6/standard/text-to-video",
		Params: []node.ParamSpec{
			{Name: "prompt", Kind: node.ParamString, Required: true},
			{Name: "negative_prompt", Kind: node.ParamString, Default: "blur, distort, and low quality"},
			{Name: "duration", Kind: node.ParamEnum, Default: "5", Enum: []string{"5", "10"}},
			{Name: "aspect_ratio", Kind: node.ParamEnum, Default: "16:9", Enum: []string{"16:9", "9:16", "1:1"}},
			{Name: "cfg_scale", Kind: node.ParamFloat, Default: 0.5, Min: node.Ptr(0), Max: node.Ptr(1)},
		},
		Outputs: []node.OutputSpec{
			{Name: "video", Kind: assets.KindVideo},
		},
		QueueMessage:      "Waiting for a video worker...",
		FinalizingMessage: "Fetching video...",
		StepMessage:       videoStepMessage,
		Milestones:        videoMilestones,
		EstimateDuration:  perVideoSecond(40*time.Second, 5),
	}
}

func klingImageToVideo() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/kling-video/v1.6/standard/image-to-video",
		Name:        "Kling 1.6 Image-to-Video",
		Description: "Animate a still image into a short clip.",
		Kind:        assets.KindVideo,
		Endpoint:    "fal-ai/kling-video/v1.6/standard/image-to-video",
		Inputs: []node.InputSpec{
			{Name: "image_url", Kind: assets.KindImage, Required: true, Description: "First frame of the clip."},
			{Name: "tail_image_url", Kind: assets.KindImage, Description: "Optional last frame to animate towards."},
		},
		Params: []node.ParamSpec{
			{Name: "prompt", Kind: node.ParamString, Required: true},
			{Name: "negative_prompt", Kind: node.ParamString, Default: "blur, distort, and low quality"},
			{Name: "duration", Kind: node.ParamEnum, Default: "5", Enum: []string{"5", "10"}},
			{Name: "cfg_scale", Kind: node.ParamFloat, Default: 0.5, Min: node.Ptr(0), Max: node.Ptr(1)},
		},
		Outputs: []node.OutputSpec{
			{Name: "video", Kind: assets.KindVideo},
		},
		QueueMessage:      "Waiting for a video worker...",
		FinalizingMessage: "Fetching video...",
		StepMessage:       videoStepMessage,
		Milestones:        videoMilestones,
		EstimateDuration:  perVideoSecond(40*time.Second, 5),
	}
}
