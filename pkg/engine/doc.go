// Package engine serves mock routes over HTTP.
//
// A Server owns one router. Admin endpoints (see package admin) are
// registered on it for their exact method and path; every other request is
// handed to the dispatch Handler, which looks the (method, path) pair up in
// the route store and answers with the configured status, delay and JSON
// body, or with a 404 when nothing matches.
//
// # Basic Usage
//
//	routes := storage.NewInMemoryRouteStore()
//	svc := registry.New(routes, registry.WithPersister(file.New(store.Config{Path: "routes.json"})))
//	if _, err := svc.Load(ctx); err != nil {
//	    return err
//	}
//
//	srv, err := engine.NewServer(engine.DefaultConfig(), routes, svc)
//	if err != nil {
//	    return err
//	}
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop(context.Background())
package engine
