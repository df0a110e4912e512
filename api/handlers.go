package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(store ProjectStore, auth Authenticator) *routeHandlers {
	return &routeHandlers{
		statusHandler:  newStatusHandler(),
		authHandler:    newAuthHandler(auth),
		projectHandler: newProjectHandler(store),
	}
}
