package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/internal/tlsutil"
)

// Storage 是提供方对象存储客户端。
// 上传采用两步握手：先初始化获得签名上传 URL 和最终文件 URL，
// 再将字节 PUT 到签名 URL。任务负载中只引用最终文件 URL。
type Storage struct {
	cfg    StorageConfig
	client *http.Client
	logger *zap.Logger
}

// NewStorage 创建对象存储客户端。
func NewStorage(cfg StorageConfig, logger *zap.Logger) *Storage {
	def := DefaultStorageConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "storage")),
	}
}

type initiateUploadRequest struct {
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
}

type initiateUploadResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
}

// Upload 将一个输入缓冲上传到对象存储，返回可在任务负载中引用的 URL。
func (s *Storage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	init, err := s.initiate(ctx, contentType)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, init.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.ContentLength = int64(len(data))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("upload failed: %v", err),
			HTTPStatus: http.StatusBadGateway,
			Retryable:  true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("upload rejected: status=%d body=%s", resp.StatusCode, readErrMsg(resp.Body)),
			HTTPStatus: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	s.logger.Debug("buffer uploaded",
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)),
	)
	return init.FileURL, nil
}

func (s *Storage) initiate(ctx context.Context, contentType string) (*initiateUploadResponse, error) {
	body, _ := json.Marshal(initiateUploadRequest{
		ContentType: contentType,
		FileName:    uuid.NewString() + extensionFor(contentType),
	})
	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/storage/upload/initiate"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create initiate request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+s.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("initiate upload failed: %v", err),
			HTTPStatus: http.StatusBadGateway,
			Retryable:  true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("initiate upload rejected: status=%d body=%s", resp.StatusCode, readErrMsg(resp.Body)),
			HTTPStatus: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	var init initiateUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&init); err != nil {
		return nil, &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("decode initiate response: %v", err),
			HTTPStatus: http.StatusBadGateway,
			Retryable:  true,
		}
	}
	return &init, nil
}

// Download 下载结果媒体。
func (s *Storage) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, "", &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("download failed: %v", err),
			HTTPStatus: http.StatusBadGateway,
			Retryable:  true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("download rejected: status=%d", resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{
			Code:       ErrStorage,
			Message:    fmt.Sprintf("read download body: %v", err),
			HTTPStatus: http.StatusBadGateway,
			Retryable:  true,
		}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// extensionFor 根据内容类型挑选文件后缀，便于在存储侧排查。
func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "audio/mpeg":
		return ".mp3"
	case "model/gltf-binary":
		return ".glb"
	default:
		return ".bin"
	}
}
