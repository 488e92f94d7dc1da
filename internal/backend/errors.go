package backend

import "errors"

// ErrSearchFailed wraps any transport or decode failure on product search.
// It is transient: the cart is unaffected and the next keystroke retries.
var ErrSearchFailed = errors.New("product search failed")

// ErrSubmissionFailed wraps sale submission failures, both transport errors
// and server-side rejections. The cart is preserved so the operator can
// retry.
var ErrSubmissionFailed = errors.New("sale submission failed")
