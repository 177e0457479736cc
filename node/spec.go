package node

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/mediaflow/assets"
	"github.com/BaSui01/mediaflow/progress"
)

// defaultExpected is the duration assumption for specs without a heuristic.
const defaultExpected = 30 * time.Second

// Spec declares one hosted model endpoint: everything the generic executor
// needs to run it. Specs are data; the request/response shapes they describe
// are fixed contracts dictated by the provider.
type Spec struct {
	// Model is the stable identifier the host graph references.
	Model string
	// Name and Description are shown in the host's node palette.
	Name        string
	Description string
	// Kind is the primary media kind the model produces.
	Kind assets.Kind
	// Endpoint is the queue path the job is submitted to.
	Endpoint string

	Inputs  []InputSpec
	Params  []ParamSpec
	Outputs []OutputSpec

	// Progress presentation. Zero values fall back to package progress
	// defaults and a generic step message.
	QueueMessage      string
	FinalizingMessage string
	StepMessage       func(step int) string
	Milestones        []progress.Milestone

	// EstimateDuration predicts the job duration from normalized
	// parameters; the estimator maps elapsed/expected onto the bar.
	// Nil uses defaultExpected.
	EstimateDuration func(params map[string]any) time.Duration

	// BuildPayload shapes the job payload. Nil merges parameters with
	// the uploaded input URLs keyed by input slot name, which matches
	// the provider's usual request shape.
	BuildPayload func(inputURLs map[string]string, params map[string]any) map[string]any

	// DecodeResult extracts output files from the terminal payload.
	// Nil uses the provider's usual file/file-list response shape keyed
	// by output slot name.
	DecodeResult func(raw json.RawMessage) ([]OutputFile, error)
}

// OutputFile is one media file extracted from a job's result payload.
type OutputFile struct {
	Slot        string
	URL         string
	ContentType string
	Width       int
	Height      int
	Bytes       int64
}

// Validate checks registry-time invariants of the spec.
func (s *Spec) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("spec: model id is required")
	}
	if s.Endpoint == "" {
		return fmt.Errorf("spec %s: endpoint is required", s.Model)
	}
	if s.Kind == "" {
		return fmt.Errorf("spec %s: media kind is required", s.Model)
	}
	if len(s.Outputs) == 0 {
		return fmt.Errorf("spec %s: at least one output is required", s.Model)
	}

	seen := map[string]bool{}
	for _, in := range s.Inputs {
		if in.Name == "" {
			return fmt.Errorf("spec %s: input with empty name", s.Model)
		}
		if seen[in.Name] {
			return fmt.Errorf("spec %s: duplicate input %q", s.Model, in.Name)
		}
		seen[in.Name] = true
	}

	seen = map[string]bool{}
	for _, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("spec %s: parameter with empty name", s.Model)
		}
		if seen[p.Name] {
			return fmt.Errorf("spec %s: duplicate parameter %q", s.Model, p.Name)
		}
		seen[p.Name] = true
		if p.Kind == ParamEnum && len(p.Enum) == 0 {
			return fmt.Errorf("spec %s: enum parameter %q has no values", s.Model, p.Name)
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return fmt.Errorf("spec %s: parameter %q has min > max", s.Model, p.Name)
		}
	}

	seen = map[string]bool{}
	for _, out := range s.Outputs {
		if out.Name == "" {
			return fmt.Errorf("spec %s: output with empty name", s.Model)
		}
		if seen[out.Name] {
			return fmt.Errorf("spec %s: duplicate output %q", s.Model, out.Name)
		}
		seen[out.Name] = true
	}
	return nil
}

// expected returns the duration estimate for a normalized parameter set.
func (s *Spec) expected(params map[string]any) time.Duration {
	if s.EstimateDuration == nil {
		return defaultExpected
	}
	if d := s.EstimateDuration(params); d > 0 {
		return d
	}
	return defaultExpected
}

// payload builds the job payload for the queue submission.
func (s *Spec) payload(inputURLs map[string]string, params map[string]any) map[string]any {
	if s.BuildPayload != nil {
		return s.BuildPayload(inputURLs, params)
	}
	body := make(map[string]any, len(params)+len(inputURLs))
	for k, v := range params {
		body[k] = v
	}
	for slot, url := range inputURLs {
		body[slot] = url
	}
	return body
}

// wireFile is the provider's standard file descriptor.
type wireFile struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
}

// decodeResult extracts output files from the terminal result payload.
func (s *Spec) decodeResult(raw json.RawMessage) ([]OutputFile, error) {
	if s.DecodeResult != nil {
		return s.DecodeResult(raw)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode result payload: %w", err)
	}

	var files []OutputFile
	for _, out := range s.Outputs {
		field, ok := body[out.Name]
		if !ok {
			continue
		}

		// A slot holds either a single file object or a file list.
		var one wireFile
		if err := json.Unmarshal(field, &one); err == nil && one.URL != "" {
			files = append(files, outputFile(out.Name, 0, one))
			continue
		}
		var many []wireFile
		if err := json.Unmarshal(field, &many); err == nil {
			for i, f := range many {
				if f.URL == "" {
					continue
				}
				files = append(files, outputFile(out.Name, i, f))
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("result payload for %s carried no output files", s.Model)
	}
	return files, nil
}

func outputFile(slot string, index int, f wireFile) OutputFile {
	name := slot
	if index > 0 {
		name = fmt.Sprintf("%s_%d", slot, index)
	}
	return OutputFile{
		Slot:        name,
		URL:         f.URL,
		ContentType: f.ContentType,
		Width:       f.Width,
		Height:      f.Height,
		Bytes:       f.FileSize,
	}
}

// outputKind resolves the media kind for a (possibly suffixed) output slot.
func (s *Spec) outputKind(slot string) assets.Kind {
	for _, out := range s.Outputs {
		if out.Name == slot || strings.HasPrefix(slot, out.Name+"_") {
			return out.Kind
		}
	}
	return s.Kind
}

// SchemaDoc renders the spec as a plain map for host node registration.
func (s *Spec) SchemaDoc() map[string]any {
	inputs := make([]map[string]any, 0, len(s.Inputs))
	for _, in := range s.Inputs {
		inputs = append(inputs, map[string]any{
			"name":        in.Name,
			"kind":        string(in.Kind),
			"required":    in.Required,
			"description": in.Description,
		})
	}
	params := make([]map[string]any, 0, len(s.Params))
	for _, p := range s.Params {
		entry := map[string]any{
			"name":        p.Name,
			"kind":        string(p.Kind),
			"required":    p.Required,
			"description": p.Description,
		}
		if p.Default != nil {
			entry["default"] = p.Default
		}
		if p.Min != nil {
			entry["min"] = *p.Min
		}
		if p.Max != nil {
			entry["max"] = *p.Max
		}
		if len(p.Enum) > 0 {
			entry["enum"] = p.Enum
		}
		params = append(params, entry)
	}
	outputs := make([]map[string]any, 0, len(s.Outputs))
	for _, out := range s.Outputs {
		outputs = append(outputs, map[string]any{
			"name": out.Name,
			"kind": string(out.Kind),
		})
	}
	return map[string]any{
		"model":       s.Model,
		"name":        s.Name,
		"description": s.Description,
		"kind":        string(s.Kind),
		"inputs":      inputs,
		"params":      params,
		"outputs":     outputs,
	}
}
