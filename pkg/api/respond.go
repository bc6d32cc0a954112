package api

import (
	"net/http"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/httputil"
)

// writeAccessError maps an access decision error onto its HTTP status
func writeAccessError(w http.ResponseWriter, err error) {
	httputil.WriteErrorMessage(w, access.HTTPStatus(err), err.Error())
}
