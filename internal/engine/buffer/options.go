package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithDebugMode makes SetText record a checkpoint before every overwrite.
func WithDebugMode(on bool) Option {
	return func(b *Buffer) {
		b.debugMode = on
	}
}

// WithCheckpoints seeds the checkpoint log, oldest first.
func WithCheckpoints(states ...string) Option {
	return func(b *Buffer) {
		b.checkpoints = append(b.checkpoints, states...)
	}
}
