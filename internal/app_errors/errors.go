package app_errors

import "errors"

var ErrNotSignedIn = errors.New("not signed in")
var ErrInsufficientPermissions = errors.New("insufficient permissions")

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidRole = errors.New("invalid role")
var ErrInvalidEmail = errors.New("invalid email")
var ErrInvalidMessageID = errors.New("invalid message id")
var ErrAuthorNotFound = errors.New("message author does not exist")

var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")
var ErrInvalidToken = errors.New("invalid token")
var ErrLinkNotFound = errors.New("login link not found")
var ErrLinkExpired = errors.New("login link expired")
var ErrTooManyRequests = errors.New("too many requests")

var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")
var ErrFeatureDisabled = errors.New("feature disabled")
