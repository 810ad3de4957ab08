package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *SiteBuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *SiteBuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func BuildFailed(stage string, cause error) *SiteBuildError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

func DiscoveryError(cause error) *SiteBuildError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "documentation discovery failed")
}

func RenderError(file string, cause error) *SiteBuildError {
	return Wrap(cause, CategoryRender, SeverityFatal, "page render failed").
		WithContext("file", file)
}

// SourceNotFound reports a declared source file missing from disk at build time.
// A file explicitly declared in configuration must exist when staged.
func SourceNotFound(path string) *SiteBuildError {
	return New(CategoryFileSystem, SeverityFatal, "source not found").
		WithContext("path", path)
}

// Serve errors

func ServeError(message string, cause error) *SiteBuildError {
	return Wrap(cause, CategoryServe, SeverityError, message)
}

// Internal errors

func InternalError(message string, cause error) *SiteBuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
