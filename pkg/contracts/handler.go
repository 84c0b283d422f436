package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by each service's HTTP handler set.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
