package rest

// A stateless REST server with a single POST API call
type StateLessServer struct {
	BaseServer
}

// create a stateless REST server
func NewStateLessServer() *StateLessServer {
	server := &StateLessServer{
		BaseServer: *NewBaseServer(),
	}

	server.router.POST("/optimizeOne", optimizeOne)

	return server
}
