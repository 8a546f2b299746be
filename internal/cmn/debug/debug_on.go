//go:build debug

// Package debug provides cheap invariant assertions compiled into
// debug builds only.
package debug

import "github.com/golang/glog"

func Assert(cond bool, args ...interface{}) {
	if !cond {
		glog.Fatalln(append([]interface{}{"assertion failed:"}, args...)...)
	}
}

func AssertNoErr(err error) {
	if err != nil {
		glog.Fatalf("assertion failed: unexpected error: %v", err)
	}
}

func AssertMsg(cond bool, msg string) {
	if !cond {
		glog.Fatalln("assertion failed:", msg)
	}
}
