package testutils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetTestGinContext(w http.ResponseWriter, req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

// GetTestGinContextWithParams builds a context as if the router had matched
// the given path parameters.
func GetTestGinContextWithParams(w http.ResponseWriter, req *http.Request, params gin.Params) *gin.Context {
	c := GetTestGinContext(w, req)
	c.Params = params
	return c
}
