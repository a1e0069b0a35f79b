// Package apiclient exposes the client builder.
//
// Endpoints are declared in package endpoint and executed with the
// functions in package client:
//
//	c, err := apiclient.NewClient("https://api.example.com/v1")
//	getUser, err := endpoint.New[User](endpoint.MethodGet, "/users/1")
//	user, err := client.Do(ctx, c, getUser)
package apiclient

import (
	"github.com/adamwoolhether/apiclient/client"
)

// NewClient instantiates a new *client.Client rooted at baseURL with the
// provided options. If not specified, a fresh http.Client over
// http.DefaultTransport and the JSON codec are used.
func NewClient(baseURL string, opts ...client.Option) (*client.Client, error) {
	return client.Build(baseURL, opts...)
}
