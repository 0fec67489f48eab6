package app

import (
	"net/http"

	armature "github.com/armature-dev/armature/framework/app"
	"github.com/armature-dev/armature/framework/http/validation"
	"github.com/armature-dev/armature/framework/routing"
)

// GreetingsController serves the demo's routes. Request-scoped: every
// request resolves its own instance, sharing the request's audit trail.
type GreetingsController struct {
	armature.Controller

	greeter *Greeter
	names   *NameFormatter
	audit   *AuditTrail
	press   *CardPress
	visits  *VisitLog
}

func NewGreetingsController(
	greeter *Greeter,
	names *NameFormatter,
	audit *AuditTrail,
	press *CardPress,
	visits *VisitLog,
) *GreetingsController {
	return &GreetingsController{
		greeter: greeter,
		names:   names,
		audit:   audit,
		press:   press,
		visits:  visits,
	}
}

// HTTPHandler binds the route descriptors declared in the module to real
// handlers.
func (c *GreetingsController) HTTPHandler(name string) http.HandlerFunc {
	switch name {
	case "Show":
		return c.Show
	case "Create":
		return c.Create
	case "Visits":
		return c.Visits
	}
	return nil
}

// Show greets the visitor named in the URL.
//
//	GET /greetings/{name}
func (c *GreetingsController) Show(w http.ResponseWriter, r *http.Request) {
	name := c.names.Format(routing.Param(r, "name"))
	c.audit.Note("greeted " + name)
	c.Response(w).Success(map[string]any{"greeting": c.greeter.Greet(name)})
}

// Create presses a greeting card from a JSON body.
//
//	POST /greetings  {"name": "ada lovelace", "note": "see you at the engine"}
func (c *GreetingsController) Create(w http.ResponseWriter, r *http.Request) {
	req := c.Request(r)
	res := c.Response(w)

	var body struct {
		Name string `json:"name"`
		Note string `json:"note"`
	}
	if err := req.Bind(&body); err != nil {
		res.BadRequest(err.Error())
		return
	}

	v := validation.Make(map[string]string{
		"name": body.Name,
		"note": body.Note,
	}, validation.Rules{
		"name": "required|min:2|max:100",
		"note": "max:280",
	})
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	name := c.names.Format(body.Name)
	c.audit.Note("pressed card for " + name)
	res.Created(c.press.Press(c.greeter.Greet(name), body.Note))
}

// Visits reports who has been greeted so far.
//
//	GET /visits
func (c *GreetingsController) Visits(w http.ResponseWriter, r *http.Request) {
	c.audit.Note("listed visits")
	c.Response(w).Success(map[string]any{
		"count":  c.visits.Count(),
		"recent": c.visits.Recent(10),
	})
}
