package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// ErrInvalidLayout is returned for layout names not in Layouts.
var ErrInvalidLayout = errors.New("invalid layout")

// Layouts lists the supported page layouts.
var Layouts = []string{"force", "circle", "grid", "tree"}

// cytoscapeScript loads Cytoscape.js from a CDN.
const cytoscapeScript = "https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Title    string
	Script   string
	Elements template.JS
	Layout   string
}

// WriteHTML writes a standalone page that draws g with Cytoscape.js. Node
// color and size follow the Graphviz output; clicking a node opens its link.
func WriteHTML(w io.Writer, g *Graph, title, layout string) error {
	name, err := ParseLayout(layout)
	if err != nil {
		return err
	}

	elements, err := json.Marshal(g.ToCytoscape())
	if err != nil {
		return fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}

	data := pageData{
		Title:    title,
		Script:   cytoscapeScript,
		Elements: template.JS(elements),
		Layout:   name,
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}

// ParseLayout maps a layout name to the Cytoscape.js algorithm. An empty
// name selects the force-directed layout.
func ParseLayout(layout string) (string, error) {
	switch strings.ToLower(layout) {
	case "", "force":
		return "cose", nil
	case "circle":
		return "circle", nil
	case "grid":
		return "grid", nil
	case "tree":
		return "breadthfirst", nil
	default:
		return "", fmt.Errorf("%w %q: must be one of %s", ErrInvalidLayout, layout, strings.Join(Layouts, ", "))
	}
}

const pageHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.Script}}"></script>
  <style>
    body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    #cy { width: 100%; height: 100vh; }
    #tooltip {
      position: absolute; display: none; max-width: 360px; padding: 8px 12px;
      background: white; border: 1px solid #ccc; border-radius: 4px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15); font-size: 12px; white-space: pre-wrap;
      pointer-events: none; z-index: 1000;
    }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: {{.Elements}},
        style: [
          {
            selector: 'node',
            style: {
              'shape': 'round-rectangle',
              'background-color': 'data(color)',
              'border-width': 1,
              'border-color': '#333',
              'label': 'data(label)',
              'text-wrap': 'wrap',
              'text-valign': 'center',
              'font-size': '9px',
              'width': 'mapData(size, 0.05, 0.4, 60, 140)',
              'height': 'mapData(size, 0.05, 0.4, 30, 70)'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '#95A5A6',
              'curve-style': 'bezier',
              'width': 'mapData(weight, 0, 50, 1, 12)'
            }
          }
        ],
        layout: { name: {{.Layout}}, animate: false }
      });

      const tooltip = document.getElementById('tooltip');
      cy.on('mouseover', 'node', function(evt) {
        tooltip.textContent = evt.target.data('tooltip');
        tooltip.style.display = 'block';
      });
      cy.on('mousemove', 'node', function(evt) {
        tooltip.style.left = (evt.renderedPosition.x + 15) + 'px';
        tooltip.style.top = (evt.renderedPosition.y + 15) + 'px';
      });
      cy.on('mouseout', 'node', function() {
        tooltip.style.display = 'none';
      });
      cy.on('tap', 'node', function(evt) {
        window.open(evt.target.data('href'), '_blank');
      });
    })();
  </script>
</body>
</html>
`
