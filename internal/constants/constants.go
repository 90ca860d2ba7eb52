package constants

import "time"

// 沙箱执行相关常量
const (
	// Shell 用于解释 command 字段
	ShellPath = "/bin/sh"

	// 输出捕获上限：4KiB 有效负载 + 100 字节溢出标记余量
	StdoutCapBytes = 4*1024 + 100
	StderrCapBytes = 4*1024 + 100

	// Stream Pump 每次非阻塞读取的缓冲区大小
	PumpBufferSize = 4 * 1024

	// Memory Sampler 采样间隔
	MemorySampleInterval = 10 * time.Millisecond

	// Deadline Timer 检查间隔
	DeadlineCheckInterval = 50 * time.Millisecond

	// cgroup v2 当前内存计数器文件，由调用方预先建立好的 cgroup 挂载点提供
	CgroupMemoryCurrentFile = "/sys/fs/cgroup/memory.current"
)

// 日志相关常量
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)
