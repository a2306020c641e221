package publicwiki

import (
	"sort"
	"strings"
)

// Naming conventions of the wiki: a tool lives at Tool:<Name>, its Cargo
// resource table is <Name>Resources, rows are written with the
// <Name>Resource template, and per-country resource pages sit under
// Resource:<Name>/<Country>[/<Region>].

const toolNamespace = "Tool:"

// NormalizeToolPage ensures the Tool: namespace prefix on a tool name.
func NormalizeToolPage(tool string) string {
	if strings.HasPrefix(tool, toolNamespace) {
		return tool
	}
	return toolNamespace + tool
}

// ToolName strips the namespace from a tool page name.
func ToolName(toolPage string) string {
	return strings.TrimPrefix(toolPage, toolNamespace)
}

// ResourceTableName returns the Cargo table holding a tool's resources.
func ResourceTableName(toolPage string) string {
	return ToolName(toolPage) + "Resources"
}

// TemplateName returns the wikitext template that records one resource row.
func TemplateName(toolPage string) string {
	return ToolName(toolPage) + "Resource"
}

// ResourcePageName returns the page collecting a tool's resources for a
// country, optionally narrowed to a region.
func ResourcePageName(toolPage, country, region string) string {
	page := "Resource:" + ToolName(toolPage) + "/" + country
	if region != "" {
		page += "/" + region
	}
	return page
}

// PageURL converts a wiki page name into its public URL. Namespace colons
// map to path separators.
func PageURL(baseURL, page string) string {
	return baseURL + "/wiki/" + strings.ReplaceAll(page, ":", "/")
}

// BuildTemplateCall renders the {{Name|k=v}} wikitext block for one resource
// row, one parameter per line, trailed by a blank line so consecutive rows
// stay separated. tool, country and region lead; the remaining parameters
// follow sorted by name so the generated text is stable.
func BuildTemplateCall(templateName string, params map[string]string) string {
	lines := []string{"{{" + templateName}

	appendParam := func(key string) {
		if value, ok := params[key]; ok {
			lines = append(lines, "|"+key+"="+value)
		}
	}
	appendParam("tool")
	appendParam("country")
	appendParam("region")

	rest := make([]string, 0, len(params))
	for key := range params {
		switch key {
		case "tool", "country", "region":
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range rest {
		lines = append(lines, "|"+key+"="+params[key])
	}

	lines = append(lines, "}}\n")
	return strings.Join(lines, "\n")
}
