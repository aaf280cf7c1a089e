package md

import (
	"fmt"
	"strings"
)

// Dump returns a textual trace of the tree rooted at n, one node per line,
// with children indented by two spaces. Payload fields that are set are shown
// after the kind.
func Dump(n *Node) string {
	var sb strings.Builder
	depth := 0
	Walk(n, func(n *Node, entering bool) WalkStatus {
		if !entering {
			depth--
			return WalkContinue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Repeat("  ", depth))
		dumpNode(&sb, n)
		depth++
		return WalkContinue
	})
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *Node) {
	sb.WriteString(n.Kind.String())
	if n.Level != 0 {
		fmt.Fprintf(sb, " Level=%d", n.Level)
	}
	if n.BulletMarker != 0 {
		fmt.Fprintf(sb, " Marker=%q", n.BulletMarker)
	}
	if n.Kind == KindOrderedList {
		fmt.Fprintf(sb, " Start=%d Delimiter=%q", n.StartNumber, n.OrderedDelimiter)
	}
	if n.Kind == KindBulletList || n.Kind == KindOrderedList {
		if n.Tight {
			sb.WriteString(" Tight")
		}
	}
	if n.FenceChar != 0 {
		fmt.Fprintf(sb, " Fence=%q", strings.Repeat(string(n.FenceChar), n.FenceLength))
	}
	if n.Info != "" {
		fmt.Fprintf(sb, " Info=%q", n.Info)
	}
	if n.Delimiter != "" {
		fmt.Fprintf(sb, " Delimiter=%q", n.Delimiter)
	}
	if n.Kind == KindLink || n.Kind == KindImage {
		fmt.Fprintf(sb, " Destination=%q", n.Destination)
	}
	if n.HasTitle {
		fmt.Fprintf(sb, " Title=%q", n.Title)
	}
	if n.Literal != "" {
		fmt.Fprintf(sb, " Literal=%q", n.Literal)
	}
	if n.Data != nil {
		fmt.Fprintf(sb, " Data=%v", n.Data)
	}
}
