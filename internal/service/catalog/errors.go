package catalog

import (
	"errors"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still has events")
	ErrTagExists        = errors.New("tag already exists")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagInUse         = errors.New("tag still has events")
	ErrEventNotFound    = errors.New("event not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrAreaNotFound     = errors.New("area not found")
	ErrInvalidInput     = errors.New("invalid input")
)
