package catalog

import (
	"time"

	"github.com/BaSui01/mediaflow/node"
)

// 时长启发式：把参数集映射为预计执行时长，供进度估计器
// 换算进度条。估得偏小进度条会提前贴近上限，估得偏大则走得慢，
// 都不影响正确性，只影响观感。

// fixedDuration 返回与参数无关的固定估计。
func fixedDuration(d time.Duration) func(map[string]any) time.Duration {
	return func(map[string]any) time.Duration { return d }
}

// perStepPerImage 按推理步数与出图数量线性估计。
func perStepPerImage(perStep time.Duration, defSteps, defImages int) func(map[string]any) time.Duration {
	return func(params map[string]any) time.Duration {
		steps := node.Int(params, "num_inference_steps", defSteps)
		images := node.Int(params, "num_images", defImages)
		if images < 1 {
			images = 1
		}
		return time.Duration(steps*images) * perStep
	}
}

// perVideoSecond 按片长线性估计。duration 参数在线协议里是字符串枚举。
func perVideoSecond(perSecond time.Duration, defSeconds int) func(map[string]any) time.Duration {
	return func(params map[string]any) time.Duration {
		seconds := defSeconds
		switch node.String(params, "duration", "") {
		case "5":
			seconds = 5
		case "10":
			seconds = 10
		}
		return time.Duration(seconds) * perSecond
	}
}
