package server

import (
	"errors"

	"esports-scoreboard/internal/domain"
	"esports-scoreboard/internal/rpc"

	"connectrpc.com/connect"
)

// toConnectError maps domain errors onto connect codes. Validation failures
// also carry their code in the X-Error-Code header.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}

	var ve *domain.ValidationError
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &ve):
		cerr := connect.NewError(connect.CodeInvalidArgument, err)
		cerr.Meta().Set(rpc.ErrorCodeHeader, string(ve.Code))
		return cerr
	case errors.As(err, &nf):
		cerr := connect.NewError(connect.CodeNotFound, err)
		cerr.Meta().Set(rpc.ErrorCodeHeader, "NOT_FOUND")
		return cerr
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
