package console

import "strings"

func (m *Router) helpText(path []string) string {
	m.mu.RLock()
	root := m.root
	alias := m.alias
	m.mu.RUnlock()

	if len(path) == 0 {
		lines := []string{"Commands (help <command> for details):"}
		for _, name := range root.childNames() {
			n, _ := root.child(name)
			lines = append(lines, entry(name, n))
		}
		return strings.Join(lines, "\n")
	}

	n := root.find(path)
	if n == nil {
		if len(path) == 1 {
			if leaf, ok := alias[path[0]]; ok && leaf.cmd != nil {
				return m.helpText(splitRoute(leaf.cmd.Route))
			}
		}
		return "Unknown command. Try help"
	}

	if n.cmd == nil {
		lines := []string{strings.Join(path, " ") + " subcommands:"}
		for _, child := range n.childNames() {
			cn, _ := n.child(child)
			lines = append(lines, entry(strings.Join(path, " ")+" "+child, cn))
		}
		return strings.Join(lines, "\n")
	}

	cmd := n.cmd
	lines := []string{cmd.Route + ": " + cmd.Description}
	if cmd.Usage != "" {
		lines = append(lines, "Usage: "+cmd.Usage)
	}
	if len(cmd.Aliases) > 0 {
		lines = append(lines, "Aliases: "+strings.Join(cmd.Aliases, ", "))
	}
	if cmd.Access == AccessOperator {
		lines = append(lines, "Requires operator")
	}
	if len(n.children) > 0 {
		lines = append(lines, "Subcommands:")
		for _, child := range n.childNames() {
			cn, _ := n.child(child)
			lines = append(lines, entry(child, cn))
		}
	}
	return strings.Join(lines, "\n")
}

func entry(name string, n *cmdNode) string {
	s := "- " + name
	if len(n.children) > 0 {
		s += " ..."
	}
	if n.cmd != nil && n.cmd.Description != "" {
		s += ": " + n.cmd.Description
	}
	return s
}
