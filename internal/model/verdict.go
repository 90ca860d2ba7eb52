package model

import (
	"encoding/json"
	"io"
)

// Verdict 是一次沙箱执行的最终结论。字段名与大小写严格遵循请求/响应文档格式，
// 因为下游的评测编排服务按这些字段名解析。
type Verdict struct {
	ExitCode int64  `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimeMS   int64  `json:"timeMS"`
	MemoryKB int64  `json:"memoryKB"`
	TLE      bool   `json:"TLE"`
	MLE      bool   `json:"MLE"`
	OLE      bool   `json:"OLE"`
}

// Encode 以四空格缩进美化输出到 w。
func (v *Verdict) Encode(w io.Writer) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
