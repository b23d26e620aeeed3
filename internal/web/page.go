package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/timada-org/tablesync/internal/entity"
)

type section struct {
	Name      string
	Label     string
	Fields    []string
	Columns   []string
	Clearable bool
}

func sectionOf[T any](e entity.Entity[T]) section {
	return section{
		Name:      e.Name,
		Label:     e.Label(),
		Fields:    e.Fields,
		Columns:   e.Columns,
		Clearable: e.Clearable,
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>People &amp; Todos</title>
</head>
<body>
{{range .}}
<section class="{{.Name}}" id="{{.Name}}">
<h1>{{.Label}}</h1>
<form data-entity="{{.Name}}">
{{range .Fields}}<input type="text" id="{{.}}" name="{{.}}" placeholder="{{.}}">
{{end}}
<button data-action="create">Create</button>
<button data-action="update">Update</button>
<button data-action="delete">Delete</button>
<button data-action="reset">Reset</button>
{{if .Clearable}}<button data-action="clear">Clear all</button>
{{end}}</form>
<table>
<thead><tr><th></th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody></tbody>
</table>
</section>
{{end}}
<script>
(function () {
  var session = null;
  var source = new EventSource("/events");

  function post(entity, action, body) {
    if (session === null) {
      return;
    }
    fetch("/sessions/" + session + "/" + entity + "/" + action, {method: "POST", body: body});
  }

  source.addEventListener("session", function (event) {
    session = JSON.parse(event.data);
  });

  source.addEventListener("render", function (event) {
    var data = JSON.parse(event.data);
    document.querySelector("#" + data.entity + " table > tbody").innerHTML = data.html;
  });

  source.addEventListener("alert", function (event) {
    alert(JSON.parse(event.data).message);
  });

  document.querySelectorAll("form[data-entity]").forEach(function (form) {
    var entity = form.dataset.entity;

    form.addEventListener("click", function (event) {
      var action = event.target.dataset.action;
      if (!action) {
        return;
      }
      event.preventDefault();
      if (action === "reset") {
        form.reset();
      }
      post(entity, action, new URLSearchParams(new FormData(form)));
    });

    document.querySelector("#" + entity + " table").addEventListener("change", function (event) {
      if (event.target.type === "radio") {
        post(entity, "select", new URLSearchParams({id: event.target.value}));
      }
    });
  });
})();
</script>
</body>
</html>
`))

func (s *Server) page() httprouter.Handle {
	sections := []section{sectionOf(entity.People), sectionOf(entity.Todos)}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, sections); err != nil {
			s.logger.Error("render page", "err", err)
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if _, err := w.Write(buf.Bytes()); err != nil {
			s.logger.Debug("write page", "err", err)
		}
	}
}
