package errors

import "net/http"

// Account / credential-store errors (component E).
var (
	ErrAccountNotFound = &Error{
		Code:       "ACCOUNT_NOT_FOUND",
		Message:    "account not found",
		Kind:       KindUserInput,
		HTTPStatus: http.StatusNotFound,
	}

	ErrAccountAmbiguous = &Error{
		Code:       "ACCOUNT_AMBIGUOUS",
		Message:    "more than one account matches, pass --account to disambiguate",
		Kind:       KindUserInput,
		HTTPStatus: http.StatusBadRequest,
	}

	ErrAccountCorrupt = &Error{
		Code:       "ACCOUNT_CORRUPT",
		Message:    "persisted account record is corrupt",
		Kind:       KindProgrammer,
		HTTPStatus: http.StatusInternalServerError,
	}
)

// Vendor client / signer / envelope errors (components B, C, D).
var (
	ErrUnknownDeviceProfile = &Error{
		Code:       "UNKNOWN_DEVICE_PROFILE",
		Message:    "unknown device profile tag",
		Kind:       KindProgrammer,
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrAmbiguousRequestBody = &Error{
		Code:       "AMBIGUOUS_REQUEST_BODY",
		Message:    "request may not carry both a form body and a query",
		Kind:       KindProgrammer,
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrTransport = &Error{
		Code:       "TRANSPORT_ERROR",
		Message:    "transport failure",
		Kind:       KindTransport,
		HTTPStatus: http.StatusBadGateway,
	}

	ErrUpstreamApplication = &Error{
		Code:       "UPSTREAM_APPLICATION_ERROR",
		Message:    "vendor reported an application-level error",
		Kind:       KindApplication,
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrResponseParse = &Error{
		Code:       "RESPONSE_PARSE_ERROR",
		Message:    "could not parse vendor response",
		Kind:       KindParse,
		HTTPStatus: http.StatusBadGateway,
	}
)

// Purchase / batch loop errors (components F, G).
var (
	ErrInsufficientBalance = &Error{
		Code:       "INSUFFICIENT_BALANCE",
		Message:    "insufficient point balance",
		Kind:       KindApplication,
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrNoImagesReturned = &Error{
		Code:       "NO_IMAGES_RETURNED",
		Message:    "no images returned",
		Kind:       KindApplication,
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrNoChaptersSelected = &Error{
		Code:       "NO_CHAPTERS_SELECTED",
		Message:    "no chapters to purchase",
		Kind:       KindUserInput,
		HTTPStatus: http.StatusBadRequest,
	}
)

// Catalog cache errors (component I).
var (
	ErrCatalogFetch = &Error{
		Code:       "CATALOG_FETCH_ERROR",
		Message:    "failed to fetch catalog",
		Kind:       KindTransport,
		HTTPStatus: http.StatusBadGateway,
	}
)

// Image descrambler errors (component H).
var (
	ErrImageDecode = &Error{
		Code:       "IMAGE_DECODE_ERROR",
		Message:    "failed to decode image",
		Kind:       KindParse,
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrGridTooLarge = &Error{
		Code:       "GRID_TOO_LARGE",
		Message:    "grid dimension exceeds image size",
		Kind:       KindProgrammer,
		HTTPStatus: http.StatusInternalServerError,
	}
)
