package pgfulltext

import (
	pferrors "github.com/nonibytes/pgfulltext/pgfulltext/errors"
)

type (
	ErrorKind = pferrors.ErrorKind
	Error     = pferrors.Error
)

const (
	ErrSchema        = pferrors.ErrSchema
	ErrIntrospection = pferrors.ErrIntrospection
	ErrQueryParse    = pferrors.ErrQueryParse
	ErrQueryRejected = pferrors.ErrQueryRejected
	ErrSQL           = pferrors.ErrSQL
	ErrUnknownField  = pferrors.ErrUnknownField
)

func New(kind ErrorKind, msg string) *Error { return pferrors.New(kind, msg) }

func Wrap(kind ErrorKind, msg string, cause error) *Error { return pferrors.Wrap(kind, msg, cause) }

func IsKind(err error, kind ErrorKind) bool { return pferrors.IsKind(err, kind) }

func KindOf(err error) ErrorKind { return pferrors.KindOf(err) }
