package adapt

// RegisterBuiltins seeds r with every built-in Dumper/Loader (spec §4.5):
// the global registry is constructed once per driver and populated with
// these before any connection derives its own scope from it.
func RegisterBuiltins(r *Registry) {
	registerNumeric(r)
	registerBool(r)
	registerText(r)
	registerBytea(r)
	registerRecord(r)
}
