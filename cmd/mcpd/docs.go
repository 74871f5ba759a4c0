package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           mcpd API
// @version         1.0
// @description     HTTP API exposing chat, completion, git, filesystem and Prometheus capabilities behind a uniform model/operation surface.
//
// @contact.name   mcpd maintainers
// @contact.url    https://github.com/your-org/mcpd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
