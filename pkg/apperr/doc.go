// Package apperr defines the error taxonomy shared by the credential and
// subscription packages.
//
// Every domain error is an *Error carrying a Kind (the coarse category a caller
// branches on) and a Code (a stable, machine-readable identifier such as
// "auth.invalid_credentials"). Mapping kinds to transport status codes is left
// to the request-handling layer.
//
// Domain packages declare their errors as package-level sentinels:
//
//	var ErrEmailAlreadyExists = apperr.New(apperr.KindConflict, "auth.email_exists", "email already exists")
//
// Sentinels survive wrapping, so both identity and category checks work:
//
//	if errors.Is(err, credential.ErrEmailAlreadyExists) { ... }
//	if apperr.KindOf(err) == apperr.KindConflict { ... }
package apperr
