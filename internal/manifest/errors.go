package manifest

import "fmt"

// ErrNothingFileExtension is returned when a manifest path has no extension
// at all, so the serialization format can't be inferred.
type ErrNothingFileExtension struct {
	Path string
}

func (e *ErrNothingFileExtension) Error() string {
	return fmt.Sprintf("manifest path %q has no file extension", e.Path)
}

// ErrUnknownFileExtension is returned for an extension that isn't one of
// toml, yaml, yml, or json.
type ErrUnknownFileExtension struct {
	Path string
	Ext  string
}

func (e *ErrUnknownFileExtension) Error() string {
	return fmt.Sprintf("manifest path %q has unknown extension %q (want toml, yaml, yml, or json)", e.Path, e.Ext)
}

// ErrDeserialize wraps a parse failure from the underlying format decoder.
type ErrDeserialize struct {
	Path string
	Hint string
	Err  error
}

func (e *ErrDeserialize) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("parsing manifest %q: %v (%s)", e.Path, e.Err, e.Hint)
	}
	return fmt.Sprintf("parsing manifest %q: %v", e.Path, e.Err)
}

func (e *ErrDeserialize) Unwrap() error { return e.Err }

// ErrValidate describes one invalid dependency entry.
type ErrValidate struct {
	Provider ProviderKind
	Name     string
	Cause    string
}

func (e *ErrValidate) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Provider, e.Name, e.Cause)
}

// ErrMultiValidate aggregates every ErrValidate found while validating a
// manifest, so a single run reports every bad entry instead of just the
// first one.
type ErrMultiValidate struct {
	Errs []*ErrValidate
}

func (e *ErrMultiValidate) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	return fmt.Sprintf("%d invalid dependencies (first: %v)", len(e.Errs), e.Errs[0])
}

func (e *ErrMultiValidate) Unwrap() []error {
	errs := make([]error, len(e.Errs))
	for i, err := range e.Errs {
		errs[i] = err
	}
	return errs
}
