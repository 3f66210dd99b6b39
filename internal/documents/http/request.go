package documentshttp

import (
	"fmt"
	"net/http"

	"github.com/limitless-hr/hris/internal/platform/httpx"
	"github.com/limitless-hr/hris/internal/signature"
)

// signRequest carries a capture session replayed on the server.
type signRequest struct {
	Mode     signature.Mode      `json:"mode" validate:"required,oneof=drawn typed"`
	Text     string              `json:"text" validate:"required_if=Mode typed,max=100"`
	Strokes  [][]signature.Point `json:"strokes" validate:"required_if=Mode drawn,max=50,dive,min=1,max=1000"`
	Width    int                 `json:"width" validate:"gte=0,lte=2000"`
	Height   int                 `json:"height" validate:"gte=0,lte=1000"`
	Position signature.Position  `json:"position"`
}

func decodeSignRequest(w http.ResponseWriter, r *http.Request) (signRequest, error) {
	httpx.LimitBody(w, r)
	var req signRequest
	if isJSON(r) {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			return signRequest{}, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return signRequest{}, err
	}
	req.Mode = signature.Mode(r.PostFormValue("mode"))
	req.Text = r.PostFormValue("text")
	return req, nil
}

// replay feeds the request's input into c as a browser would.
func (req signRequest) replay(c *signature.Capture) error {
	if err := c.SetMode(req.Mode); err != nil {
		return err
	}
	if req.Mode == signature.ModeTyped {
		return c.SetText(req.Text)
	}
	for i, stroke := range req.Strokes {
		if len(stroke) == 0 {
			return fmt.Errorf("stroke %d is empty", i)
		}
		if err := c.BeginStroke(stroke[0]); err != nil {
			return err
		}
		for _, p := range stroke[1:] {
			if err := c.StrokeTo(p); err != nil {
				return err
			}
		}
		c.EndStroke()
	}
	return nil
}
