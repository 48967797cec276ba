package normalize

import "sort"

// resolveSpans orders spans by start and removes duplicates and nested spans.
//
// Adjacent pairs are merged first: spans sharing a start keep the longer one,
// and a span that fully contains its successor absorbs it. Partial overlaps
// survive that pass and are settled by a single left-to-right sweep in which
// the span encountered first wins. Identical intervals collapse into one span
// that is a MethodName if any of the duplicates was.
func resolveSpans(spans []Span) SpanSet {
	ordered := append([]Span(nil), spans...)
	sort.SliceStable(ordered, func(left, right int) bool {
		return ordered[left].Start < ordered[right].Start
	})

	index := 0
	for index < len(ordered)-1 {
		current, next := ordered[index], ordered[index+1]
		if current.End <= next.Start {
			index++
			continue
		}
		switch {
		case current.Start == next.Start && current.End == next.End:
			ordered[index].Kind = dominantKind(current.Kind, next.Kind)
			ordered = removeSpan(ordered, index+1)
		case current.Start == next.Start && current.End < next.End:
			ordered = removeSpan(ordered, index)
		case current.Start == next.Start:
			ordered = removeSpan(ordered, index+1)
		case current.End >= next.End:
			ordered = removeSpan(ordered, index+1)
		default:
			index++
		}
	}

	resolved := make(SpanSet, 0, len(ordered))
	for _, span := range ordered {
		if len(resolved) > 0 && span.Start < resolved[len(resolved)-1].End {
			continue
		}
		resolved = append(resolved, span)
	}
	return resolved
}

func dominantKind(left, right SpanKind) SpanKind {
	if left == MethodName || right == MethodName {
		return MethodName
	}
	return FileName
}

func removeSpan(spans []Span, position int) []Span {
	return append(spans[:position], spans[position+1:]...)
}
