//go:build !debug

package debug

func Assert(cond bool, args ...interface{}) {}
func AssertNoErr(err error)                 {}
func AssertMsg(cond bool, msg string)        {}
