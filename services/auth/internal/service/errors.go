package service

import (
	"errors"

	"github.com/Skotchmaster/vente_shop/pkg/tokens"
)

var (
	ErrValidation         = errors.New("validation")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = tokens.ErrInvalidToken
)
