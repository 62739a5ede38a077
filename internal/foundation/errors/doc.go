// Package errors provides the classified error primitives used across blogsync.
//
// Components never let raw filesystem or subprocess errors cross their boundary;
// they wrap them into a ClassifiedError carrying a category, a severity, a retry
// strategy and a small context map. The deployment orchestrator and the CLI/HTTP
// adapters read those classifications to pick log levels, exit codes and status codes.
//
// Example usage:
//
//	err := errors.WrapError(ioErr, errors.CategoryContent, "write destination post").
//		WithContext("file", name).
//		Build()
package errors
