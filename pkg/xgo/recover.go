package xgo

import (
	"runtime/debug"

	"github.com/go-kratos/kratos/v2/log"
)

// RecoverFromError 须直接 defer 调用；cb 收到 panic 值
func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		log.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}

// Go 启动带 recover 的协程
func Go(f func()) {
	go func() {
		defer RecoverFromError(nil)
		f()
	}()
}
