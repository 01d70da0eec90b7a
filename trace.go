package database

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// stackFrames 当前协程的调用栈 跳过 runtime 与本文件内的帧
func stackFrames(skip int, hidePath bool) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var out []string
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") {
			file := f.File
			if hidePath {
				file = "~/" + file[strings.LastIndex(file, "/")+1:]
			}
			out = append(out, fmt.Sprintf("  File %s:%d\n    %s", file, f.Line, f.Function))
		}
		if !more {
			break
		}
	}
	return out
}

// GetFormatTrace 格式化异常与调用栈 r 为错误或 recover() 的返回值
//
// depth 为最多输出的栈帧数 hidePath 隐藏目录 hideGor 隐藏协程数量
func GetFormatTrace(r any, depth int, hidePath bool, hideGor bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n程序于%s捕获到异常\n      异常类型：%T\n      异常描述：%v", time.Now().Format(TimeLayout), r, r)
	if !hideGor {
		fmt.Fprintf(&sb, "\n运行中的协程量：%d", runtime.NumGoroutine())
	}
	frames := stackFrames(3, hidePath)
	if depth > 0 && len(frames) > depth {
		frames = frames[:depth]
	}
	sb.WriteString("\n异常触发栈追踪：\n")
	sb.WriteString(strings.Join(frames, "\n"))
	return sb.String()
}
