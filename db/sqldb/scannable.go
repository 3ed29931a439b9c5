package sqldb

// fieldTargets exposes a model's scan destinations.
type fieldTargets interface {
	TargetFields() []any
}

// Scannable is a *Model whose TargetFields are scanned in select-list order.
// RowsToItems and mapper.TemplateInto use it to build typed results.
type Scannable[T any] interface {
	~*T
	fieldTargets
}
