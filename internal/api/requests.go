package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// CreateUserRequest is the payload for POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username" form:"username"`
}

// AddExerciseRequest is the payload for POST /api/users/:id/exercises.
type AddExerciseRequest struct {
	Description string     `json:"description" form:"description"`
	Duration    flexString `json:"duration" form:"duration"`
	Date        string     `json:"date" form:"date"`
}

// LogQueryRequest carries the optional filters of GET /api/users/:id/logs.
type LogQueryRequest struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit string `query:"limit"`
}

// flexString accepts a JSON number or string and keeps its literal text, so
// that {"duration": 30} and {"duration": "30"} bind the same way and
// non-numeric input can still be reported by validation.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// UnmarshalParam implements echo.BindUnmarshaler for form and query values.
func (f *flexString) UnmarshalParam(param string) error {
	*f = flexString(strings.TrimSpace(param))
	return nil
}

// bindBody binds only the request body. Form values are read from PostForm so
// a URL query cannot supply body fields.
func bindBody(c echo.Context, dst any) error {
	req := c.Request()
	ctype := req.Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEApplicationForm) || strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		if err := req.ParseForm(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		req.Form = make(url.Values, len(req.PostForm))
		for key, values := range req.PostForm {
			req.Form[key] = append([]string(nil), values...)
		}
	}
	return (&echo.DefaultBinder{}).BindBody(c, dst)
}
