package overload

import (
	"martianoff/callbind/internal/arglist"
	"martianoff/callbind/internal/bound"
	"martianoff/callbind/internal/symbols"
)

// pickBest sets v.Best to the applicable candidate better than every other
// applicable candidate, or records the tie.
func (r *Resolver) pickBest(args *arglist.List, v *Verdict) {
	var app []int
	for i := range v.Results {
		if v.Results[i].Applicable() {
			app = append(app, i)
		}
	}
	if len(app) == 0 {
		return
	}
	for _, i := range app {
		wins := true
		for _, j := range app {
			if i != j && !r.better(args, &v.Results[i], &v.Results[j]) {
				wins = false
				break
			}
		}
		if wins {
			v.Best = i
			for _, j := range app {
				if j != i {
					v.Results[j].Worse = true
				}
			}
			return
		}
	}
	// No single winner: name the first two candidates neither of which beats the other.
	for x, i := range app {
		for _, j := range app[x+1:] {
			if !r.better(args, &v.Results[i], &v.Results[j]) && !r.better(args, &v.Results[j], &v.Results[i]) {
				v.Ambiguous = []int{i, j}
				return
			}
		}
	}
	v.Ambiguous = []int{app[0], app[1]}
}

// better reports whether a is a better function member than b for args.
func (r *Resolver) better(args *arglist.List, a, b *MemberResult) bool {
	someBetter, allSame := false, true
	for i := 0; i < args.Len(); i++ {
		ta, tb := a.TargetType(i), b.TargetType(i)
		if !symbols.Identical(ta, tb) {
			allSame = false
		}
		switch r.betterConversion(args.Arg(i), ta, tb) {
		case -1:
			return false
		case 1:
			someBetter = true
		}
	}
	if someBetter {
		return true
	}
	if !allSame {
		return false
	}
	switch {
	case a.Form == NormalForm && b.Form == ExpandedForm:
		return true
	case !a.Original.IsGeneric() && b.Original.IsGeneric():
		return true
	case a.Defaults == 0 && b.Defaults > 0:
		return true
	}
	return false
}

// betterConversion compares converting e to t1 against converting it to t2:
// 1 when t1 is better, -1 when t2 is, 0 otherwise.
func (r *Resolver) betterConversion(e bound.Expr, t1, t2 symbols.Type) int {
	if symbols.Identical(t1, t2) {
		return 0
	}
	if src := e.Type(); src != nil {
		e1, e2 := symbols.Identical(src, t1), symbols.Identical(src, t2)
		switch {
		case e1 && !e2:
			return 1
		case e2 && !e1:
			return -1
		}
	}
	c12 := r.conv.ClassifyType(t1, t2).Exists()
	c21 := r.conv.ClassifyType(t2, t1).Exists()
	switch {
	case c12 && !c21:
		return 1
	case c21 && !c12:
		return -1
	}
	return 0
}
