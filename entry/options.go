package entry

// Options configures an Entries accessor. Zero values are safe except Memory:
//   - nil Sizer => AllocLen
type Options struct {
	// Memory is where entry blocks live. It must also implement Viewer.
	Memory Memory

	// Sizer must agree with the size the allocator reserved for each block.
	Sizer Sizer
}
