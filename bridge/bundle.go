package bridge

// Bundle is a pre-configured set of related exposed functions.
// Bundles allow registering several functions at once.
type Bundle interface {
	// Exports returns the functions of the bundle.
	Exports() []Export
}

// staticBundle implements Bundle with a fixed set of exports.
type staticBundle struct {
	exports []Export
}

func (b *staticBundle) Exports() []Export {
	return b.exports
}

// NewBundle returns a Bundle over a fixed set of exports.
func NewBundle(exports ...Export) Bundle {
	return &staticBundle{exports: exports}
}

// compositeBundle combines multiple bundles into one.
type compositeBundle struct {
	bundles []Bundle
}

func (b *compositeBundle) Exports() []Export {
	var result []Export
	for _, bundle := range b.bundles {
		result = append(result, bundle.Exports()...)
	}
	return result
}

// Compose returns a bundle containing the exports of every given bundle.
// Name collisions surface as duplicate-name errors from NewRegistry.
func Compose(bundles ...Bundle) Bundle {
	return &compositeBundle{bundles: bundles}
}

// WithBundle registers all exports of a bundle.
func WithBundle(bundle Bundle) RegistryOption {
	return func(b *registryBuilder) {
		for _, exp := range bundle.Exports() {
			if err := b.addExport(exp); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
