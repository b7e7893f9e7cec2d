package main

// Swagger metadata for the serve command. Regenerate docs/ with
// `swag init -g cmd/mcpsolve/docs.go` and build with -tags=swagger to serve it.
//
// @title           mcpsolve API
// @version         1.0
// @description     Solve Multiple Courier Problem instances with the sat, pb or cp engine.
// @description     Results follow the batch JSON schema: time, optimal, obj and 1-based sol.
//
// @tag.name         solve
// @tag.description  Run one instance through an engine
// @tag.name         meta
// @tag.description  Registered engines and solver counters
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
// @accept    json
// @produce   json
// @schemes   http
