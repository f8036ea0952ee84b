package main

type T struct {
	f string
	g *T
}

var global string

func source() string { return "secret" }

func sink(s string) {}

func sanitize(s string) string { return s[:0] }

func id(x *T) *T { return x }

func set(x *T, s string) { x.f = s }

func mk() *T {
	t := &T{}
	t.f = source() // @Source(ret)
	return t
}

func main() {
	direct()
	viaCall()
	returned()
	sanitized()
	viaGlobal()
}

func direct() {
	s := source() // @Source(direct)
	t := s + "!"
	sink(t) // @Sink(direct)
}

func viaCall() {
	a := &T{}
	set(a, source()) // @Source(call)
	b := id(a)
	sink(b.f) // @Sink(call)
}

func returned() {
	t := mk()
	sink(t.f) // @Sink(ret)
}

func sanitized() {
	s := sanitize(source())
	sink(s)
}

func viaGlobal() {
	global = source() // @Source(global)
	sink(global)      // @Sink(global)
}
