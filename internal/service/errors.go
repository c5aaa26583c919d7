package service

import "errors"

var (
	ErrNoPortfolio          = errors.New("no portfolio uploaded for this session")
	ErrNotFound             = errors.New("not found")
	ErrCloudStorageDisabled = errors.New("cloud storage is not configured")
)
