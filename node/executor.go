package node

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/mediaflow/assets"
	"github.com/BaSui01/mediaflow/internal/metrics"
	"github.com/BaSui01/mediaflow/progress"
	"github.com/BaSui01/mediaflow/provider"
)

// Request asks the executor to run one model against resolved graph inputs.
type Request struct {
	Model  string
	Inputs map[string]assets.Ref
	Params map[string]any

	// Reporter receives progress updates for this invocation. Nil
	// discards them.
	Reporter progress.Reporter
}

// Result is the outcome of one completed execution.
type Result struct {
	Model   string
	JobID   string
	Outputs map[string]assets.Asset
	Raw     json.RawMessage
	Elapsed time.Duration
}

// Executor 是所有模型共用的通用执行例程：
// 校验 → 解析输入 → 上传 → 提交 → 订阅进度 → 取结果 → 回存宿主资产库。
// 每次执行持有自己的 Estimator，绝不跨任务共享。
type Executor struct {
	client   *provider.Client
	storage  *provider.Storage
	registry *Registry
	resolver assets.Resolver
	store    assets.Store
	cache    assets.UploadCache
	metrics  *metrics.Collector
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithUploadCache 启用输入上传去重缓存。
func WithUploadCache(cache assets.UploadCache) Option {
	return func(x *Executor) { x.cache = cache }
}

// WithMetrics 使用外部指标收集器（宿主注册表）。
func WithMetrics(collector *metrics.Collector) Option {
	return func(x *Executor) { x.metrics = collector }
}

// WithLogger 设置日志器。
func WithLogger(logger *zap.Logger) Option {
	return func(x *Executor) { x.logger = logger }
}

// NewExecutor 创建执行器。resolver 为 nil 时仅支持 URL 与内联数据输入。
func NewExecutor(client *provider.Client, storage *provider.Storage, registry *Registry, resolver assets.Resolver, store assets.Store, opts ...Option) *Executor {
	x := &Executor{
		client:   client,
		storage:  storage,
		registry: registry,
		resolver: resolver,
		store:    store,
		cache:    assets.NopCache(),
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("github.com/BaSui01/mediaflow/node"),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.metrics == nil {
		// Unwired collector; hosts pass their own via WithMetrics.
		x.metrics = metrics.NewCollector("mediaflow", prometheus.NewRegistry(), x.logger)
	}
	return x
}

// Execute runs one model invocation end to end.
func (x *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	spec, ok := x.registry.Get(req.Model)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", req.Model)
	}

	ctx, span := x.tracer.Start(ctx, "mediaflow.execute",
		trace.WithAttributes(attribute.String("model", req.Model)))
	defer span.End()

	reporter := req.Reporter
	if reporter == nil {
		reporter = progress.Discard
	}

	params, err := NormalizeParams(spec.Params, req.Params)
	if err != nil {
		return nil, invalidInput(spec, err.Error())
	}
	if err := x.checkInputs(spec, req.Inputs); err != nil {
		return nil, err
	}

	inputURLs, err := x.uploadInputs(ctx, spec, req.Inputs)
	if err != nil {
		return nil, err
	}

	est := progress.NewEstimator(progress.Config{
		Expected:          spec.expected(params),
		QueueMessage:      spec.QueueMessage,
		FinalizingMessage: spec.FinalizingMessage,
		StepMessage:       spec.StepMessage,
		Milestones:        spec.Milestones,
	})

	start := time.Now()
	x.metrics.JobSubmitted(spec.Model)

	handle, err := x.client.Submit(ctx, spec.Endpoint, spec.payload(inputURLs, params))
	if err != nil {
		x.metrics.JobFinished(spec.Model, "failed", time.Since(start))
		return nil, err
	}
	span.SetAttributes(attribute.String("request_id", handle.RequestID))
	x.logger.Info("job submitted",
		zap.String("model", spec.Model),
		zap.String("request_id", handle.RequestID),
	)

	if err := x.trackJob(ctx, spec, handle, est, reporter, start); err != nil {
		x.metrics.JobFinished(spec.Model, "failed", time.Since(start))
		return nil, err
	}

	var raw json.RawMessage
	if err := x.client.Result(ctx, handle, &raw); err != nil {
		x.metrics.JobFinished(spec.Model, "failed", time.Since(start))
		return nil, err
	}

	outputs, err := x.collectOutputs(ctx, spec, raw)
	if err != nil {
		x.metrics.JobFinished(spec.Model, "failed", time.Since(start))
		return nil, err
	}

	elapsed := time.Since(start)
	x.metrics.JobFinished(spec.Model, "completed", elapsed)
	x.logger.Info("job completed",
		zap.String("model", spec.Model),
		zap.String("request_id", handle.RequestID),
		zap.Int("outputs", len(outputs)),
		zap.Duration("elapsed", elapsed),
	)

	return &Result{
		Model:   spec.Model,
		JobID:   handle.RequestID,
		Outputs: outputs,
		Raw:     raw,
		Elapsed: elapsed,
	}, nil
}

// invalidInput 将校验失败映射为统一的输入错误。
func invalidInput(spec *Spec, msg string) error {
	return &provider.Error{
		Code:       provider.ErrInvalidInput,
		Message:    fmt.Sprintf("model %s: %s", spec.Model, msg),
		HTTPStatus: http.StatusBadRequest,
		Endpoint:   spec.Endpoint,
	}
}

// checkInputs enforces the spec's input slots against the request.
func (x *Executor) checkInputs(spec *Spec, refs map[string]assets.Ref) error {
	known := make(map[string]*InputSpec, len(spec.Inputs))
	for i := range spec.Inputs {
		known[spec.Inputs[i].Name] = &spec.Inputs[i]
	}
	for name := range refs {
		if _, ok := known[name]; !ok {
			return invalidInput(spec, fmt.Sprintf("unknown input %q", name))
		}
	}
	for _, in := range spec.Inputs {
		if !in.Required {
			continue
		}
		ref, ok := refs[in.Name]
		if !ok || ref.Empty() {
			return invalidInput(spec, fmt.Sprintf("missing required input %q", in.Name))
		}
	}
	return nil
}

// uploadInputs resolves each referenced input to a provider-storage URL.
// URL references pass through untouched; buffers are uploaded once per
// content hash via the upload cache.
func (x *Executor) uploadInputs(ctx context.Context, spec *Spec, refs map[string]assets.Ref) (map[string]string, error) {
	urls := make(map[string]string, len(refs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for name, ref := range refs {
		if ref.Empty() {
			continue
		}
		g.Go(func() error {
			url, err := x.resolveAndUpload(ctx, ref)
			if err != nil {
				return fmt.Errorf("input %q: %w", name, err)
			}
			mu.Lock()
			urls[name] = url
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Model, err)
	}
	return urls, nil
}

func (x *Executor) resolveAndUpload(ctx context.Context, ref assets.Ref) (string, error) {
	var (
		data        []byte
		contentType string
	)
	switch {
	case ref.HostID != "":
		if x.resolver == nil {
			return "", fmt.Errorf("host asset %q referenced but no resolver configured", ref.HostID)
		}
		var err error
		data, contentType, err = x.resolver.Resolve(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("resolve: %w", err)
		}
	case ref.URL != "":
		// Plain URLs are already reachable by the provider.
		return ref.URL, nil
	default:
		data = ref.Data
	}

	key := assets.CacheKey(data)
	if url, ok, err := x.cache.Get(ctx, key); err == nil && ok {
		x.metrics.CacheHit()
		return url, nil
	}
	x.metrics.CacheMiss()

	url, err := x.storage.Upload(ctx, data, contentType)
	if err != nil {
		return "", err
	}
	x.metrics.BytesUploaded(len(data))

	if err := x.cache.Put(ctx, key, url); err != nil {
		// 缓存写失败不阻断执行，下次重新上传即可。
		x.logger.Warn("upload cache put failed", zap.Error(err))
	}
	return url, nil
}

// trackJob consumes the job's lifecycle events, feeding them through this
// invocation's estimator. It returns once the job reaches its terminal
// phase.
func (x *Executor) trackJob(ctx context.Context, spec *Spec, handle *provider.JobHandle, est *progress.Estimator, reporter progress.Reporter, submitted time.Time) error {
	ch, err := x.client.Subscribe(ctx, handle)
	if err != nil {
		return err
	}

	stepIndex := 0
	sawProgress := false
	completed := false

	for update := range ch {
		if update.Err != nil {
			return update.Err
		}
		switch update.Phase {
		case provider.PhaseQueued:
			reporter.Report(est.OnQueue())
		case provider.PhaseInProgress:
			if !sawProgress {
				sawProgress = true
				x.metrics.QueueWait(spec.Model, time.Since(submitted))
			}
			stepIndex++
			reporter.Report(est.OnProgress(progress.Event{Logs: update.LogLines()}, stepIndex))
		case provider.PhaseCompleted:
			completed = true
			reporter.Report(est.OnCompleted())
		}
	}

	if !completed {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("model %s: event stream ended before completion", spec.Model)
	}
	return nil
}

// collectOutputs downloads each result file and stores it in the host
// asset system.
func (x *Executor) collectOutputs(ctx context.Context, spec *Spec, raw json.RawMessage) (map[string]assets.Asset, error) {
	files, err := spec.decodeResult(raw)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]assets.Asset, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			data, contentType, err := x.storage.Download(ctx, file.URL)
			if err != nil {
				return fmt.Errorf("output %q: %w", file.Slot, err)
			}
			x.metrics.BytesDownloaded(len(data))
			if contentType == "" {
				contentType = file.ContentType
			}

			asset, err := x.store.Save(ctx, spec.outputKind(file.Slot), data, contentType)
			if err != nil {
				return fmt.Errorf("store output %q: %w", file.Slot, err)
			}
			if asset.ID == "" {
				asset.ID = uuid.NewString()
			}
			if asset.Width == 0 {
				asset.Width = file.Width
			}
			if asset.Height == 0 {
				asset.Height = file.Height
			}
			if asset.Bytes == 0 {
				asset.Bytes = int64(len(data))
			}

			mu.Lock()
			outputs[file.Slot] = asset
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Model, err)
	}
	return outputs, nil
}
