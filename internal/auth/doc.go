// Package auth acquires the OAuth credential used by the delivery stage.
//
// The credential flow mirrors the Google installed-application pattern:
// a client descriptor (credentials.json) identifies the application, and a
// single on-disk token cache (token.json) holds the access/refresh token
// pair between runs. When no usable cached token exists, Flow runs one
// interactive authorization: it prints the authorization URL, reads the
// provider's code through an injected CodePrompter, exchanges it for a
// token, and persists the result best-effort.
//
// Token cache writes are deliberately non-fatal: a run that obtained a
// fresh token still delivers with the in-memory credential even when the
// cache cannot be written.
package auth
