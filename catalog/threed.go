package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BaSui01/mediaflow/assets"
	"github.com/BaSui01/mediaflow/node"
	"github.com/BaSui01/mediaflow/progress"
)

func registerThreeDModels(r *node.Registry) {
	r.MustRegister(tripoSR())
	r.MustRegister(hunyuan3D())
}

func tripoSR() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/triposr",
		Name:        "TripoSR",
		Description: "Fast single-image 3D reconstruction.",
		Kind:        assets.KindModel3D,
		Endpoint:    "fal-ai/triposr",
		Inputs: []node.InputSpec{
			{Name: "image_url", Kind: assets.KindImage, Required: true, Description: "Object photo to reconstruct."},
		},
		Params: []node.ParamSpec{
			{Name: "output_format", Kind: node.ParamEnum, Default: "glb", Enum: []string{"glb", "obj"}},
			{Name: "mc_resolution", Kind: node.ParamInt, Default: 256, Min: node.Ptr(64), Max: node.Ptr(512)},
			{Name: "foreground_ratio", Kind: node.ParamFloat, Default: 0.9, Min: node.Ptr(0.5), Max: node.Ptr(1)},
			{Name: "do_remove_background", Kind: node.ParamBool, Default: true},
		},
		Outputs: []node.OutputSpec{
			{Name: "model_mesh", Kind: assets.KindModel3D},
		},
		QueueMessage:      "Waiting for a 3D worker...",
		FinalizingMessage: "Fetching mesh...",
		StepMessage: func(step int) string {
			return fmt.Sprintf("Reconstructing... %d%%", step)
		},
		EstimateDuration: fixedDuration(25 * time.Second),
	}
}

func hunyuan3D() *node.Spec {
	return &node.Spec{
		Model:       "fal-ai/hunyuan3d/v2",
		Name:        "Hunyuan3D 2.0",
		Description: "Image-to-3D with textured mesh output.",
		Kind:        assets.KindModel3D,
		Endpoint:    "fal-ai/hunyuan3d/v2",
		Inputs: []node.InputSpec{
			{Name: "input_image_url", Kind: assets.KindImage, Required: true, Description: "Object photo to reconstruct."},
		},
		Params: []node.ParamSpec{
			{Name: "num_inference_steps", Kind: node.ParamInt, Default: 50, Min: node.Ptr(1), Max: node.Ptr(50)},
			{Name: "guidance_scale", Kind: node.ParamFloat, Default: 7.5, Min: node.Ptr(0), Max: node.Ptr(20)},
			{Name: "octree_resolution", Kind: node.ParamInt, Default: 256, Min: node.Ptr(64), Max: node.Ptr(512)},
			{Name: "textured_mesh", Kind: node.ParamBool, Default: false},
			{Name: "seed", Kind: node.ParamInt},
		},
		Outputs: []node.OutputSpec{
			{Name: "model_mesh", Kind: assets.KindModel3D},
		},
		QueueMessage:      "Waiting for a 3D worker...",
		FinalizingMessage: "Fetching mesh...",
		Milestones: []progress.Milestone{
			{Match: "shape", Message: "Generating geometry..."},
			{Match: "texture", Message: "Painting textures..."},
			{Match: "export", Message: "Exporting mesh..."},
		},
		// 带纹理重建明显更慢。
		EstimateDuration: func(params map[string]any) time.Duration {
			if node.Bool(params, "textured_mesh", false) {
				return 3 * time.Minute
			}
			return 80 * time.Second
		},
		// 结果负载把网格放在 model_mesh 对象里，纹理贴图另列；
		// 宿主只关心网格本体。
		DecodeResult: func(raw json.RawMessage) ([]node.OutputFile, error) {
			var body struct {
				ModelMesh struct {
					URL         string `json:"url"`
					ContentType string `json:"content_type"`
					FileSize    int64  `json:"file_size"`
				} `json:"model_mesh"`
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				return nil, fmt.Errorf("decode hunyuan3d result: %w", err)
			}
			if body.ModelMesh.URL == "" {
				return nil, fmt.Errorf("hunyuan3d result carried no mesh")
			}
			return []node.OutputFile{{
				Slot:        "model_mesh",
				URL:         body.ModelMesh.URL,
				ContentType: body.ModelMesh.ContentType,
				Bytes:       body.ModelMesh.FileSize,
			}}, nil
		},
	}
}
