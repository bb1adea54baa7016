package scenario

import "fmt"

// Suite is an ordered set of cases run against one session.
type Suite struct {
	Name  string
	Cases []Case
}

// Validate requires unique, non-empty case names and unique step
// names within each case.
func (s Suite) Validate() error {
	seen := make(map[string]bool, len(s.Cases))
	for _, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("suite %q: case with empty name", s.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("suite %q: duplicate case %q", s.Name, c.Name)
		}
		seen[c.Name] = true

		steps := make(map[string]bool, len(c.Steps))
		for _, st := range c.Steps {
			if steps[st.Name] {
				return fmt.Errorf(
					"case %q: duplicate step %q", c.Name, st.Name,
				)
			}
			steps[st.Name] = true
		}
	}
	return nil
}
