package model

import (
	"encoding/json"
	"io"

	wderrors "github.com/takoyaki65/dsa-watchdog/pkg/errors"
)

// Request 描述一次沙箱执行请求。
type Request struct {
	Command       string `json:"command"`
	Stdin         string `json:"stdin"`
	TimeoutMS     int64  `json:"timeoutMS"`
	MemoryLimitMB int64  `json:"memoryLimitMB"`
	UID           uint32 `json:"uid"`
	GID           uint32 `json:"gid"`
}

// rawRequest 用于区分「字段缺失」与「字段为零值」，因为 timeoutMS=0、memoryLimitMB=0
// 都是合法的（表示不设上限），json.Unmarshal 无法仅凭 Request 的值类型分辨两者。
type rawRequest struct {
	Command       *string `json:"command"`
	Stdin         *string `json:"stdin"`
	TimeoutMS     *int64  `json:"timeoutMS"`
	MemoryLimitMB *int64  `json:"memoryLimitMB"`
	UID           *uint32 `json:"uid"`
	GID           *uint32 `json:"gid"`
}

// DecodeRequest 从 r 中读取一份完整的 JSON 请求文档并校验必填字段。
func DecodeRequest(r io.Reader) (*Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wderrors.Wrap(wderrors.ErrCodeReadRequest, "read request", err)
	}

	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, wderrors.Wrap(wderrors.ErrCodeReadRequest, "parse request json", err)
	}

	switch {
	case raw.Command == nil:
		return nil, wderrors.NewMissingFieldError("command")
	case raw.Stdin == nil:
		return nil, wderrors.NewMissingFieldError("stdin")
	case raw.TimeoutMS == nil:
		return nil, wderrors.NewMissingFieldError("timeoutMS")
	case raw.MemoryLimitMB == nil:
		return nil, wderrors.NewMissingFieldError("memoryLimitMB")
	case raw.UID == nil:
		return nil, wderrors.NewMissingFieldError("uid")
	case raw.GID == nil:
		return nil, wderrors.NewMissingFieldError("gid")
	}

	if *raw.Command == "" {
		return nil, wderrors.NewInvalidFieldError("command", "must not be empty")
	}
	if *raw.TimeoutMS < 0 {
		return nil, wderrors.NewInvalidFieldError("timeoutMS", "must be non-negative")
	}
	if *raw.MemoryLimitMB < 0 {
		return nil, wderrors.NewInvalidFieldError("memoryLimitMB", "must be non-negative")
	}

	return &Request{
		Command:       *raw.Command,
		Stdin:         *raw.Stdin,
		TimeoutMS:     *raw.TimeoutMS,
		MemoryLimitMB: *raw.MemoryLimitMB,
		UID:           *raw.UID,
		GID:           *raw.GID,
	}, nil
}
