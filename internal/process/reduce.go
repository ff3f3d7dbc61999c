package process

import "github.com/coregx/textguard/internal/chartable"

// stageSig identifies how far a text has progressed through the fixed
// Fanjian -> Delete -> Normalize -> (PinYin|PinYinChar) pipeline. Two
// masks that agree on a signature prefix share the same intermediate
// view, so the driver only computes each distinct prefix once.
type stageSig struct {
	fanjian, del, norm bool
	pinyin             byte // 0 = none, 1 = PinYin, 2 = PinYinChar
}

func signatureFor(mask Type) stageSig {
	s := stageSig{
		fanjian: mask.Has(Fanjian),
		del:     mask.Has(Delete),
		norm:    mask.Has(Normalize),
	}
	switch {
	case mask.Has(PinYin):
		s.pinyin = 1
	case mask.Has(PinYinChar):
		s.pinyin = 2
	}
	return s
}

// prefixes returns the ordered chain of signatures leading up to sig, one
// step added at a time: (), (fanjian?), (fanjian?,delete?),
// (fanjian?,delete?,norm?), (fanjian?,delete?,norm?,pinyin?).
func prefixes(sig stageSig) []stageSig {
	return []stageSig{
		{},
		{fanjian: sig.fanjian},
		{fanjian: sig.fanjian, del: sig.del},
		{fanjian: sig.fanjian, del: sig.del, norm: sig.norm},
		sig,
	}
}

// Reduce computes the minimal set of distinct normalized views needed to
// cover every mask in masks, reusing shared prefix work across masks that
// diverge only in their later stages (spec.md §4.3's "reduce-process
// driver"). It returns one View per distinct requested mask, keyed by that
// mask.
func Reduce(tables *chartable.Tables, masks []Type, text string) map[Type]View {
	result := make(map[Type]View, len(masks))
	cache := make(map[stageSig]View)
	cache[stageSig{}] = View{Text: text, Offsets: identityOffsets(len(text))}

	for _, mask := range masks {
		if mask == None || mask == 0 {
			result[mask] = View{Type: mask, Text: text, Offsets: identityOffsets(len(text))}
			continue
		}
		sig := signatureFor(mask)
		chain := prefixes(sig)
		for i := 1; i < len(chain); i++ {
			if _, ok := cache[chain[i]]; ok {
				continue
			}
			prev := cache[chain[i-1]]
			cache[chain[i]] = advance(tables, chain[i-1], chain[i], prev)
		}
		final := cache[chain[len(chain)-1]]
		final.Type = mask
		result[mask] = final
	}
	return result
}

// advance applies whichever single stage differs between from and to, to
// prev's (text, offsets). from and to are guaranteed to differ in exactly
// one stage by construction (see prefixes).
func advance(tables *chartable.Tables, from, to stageSig, prev View) View {
	switch {
	case from.fanjian != to.fanjian:
		t, o := applyReplace(tables.Fanjian, prev.Text, prev.Offsets)
		return View{Text: t, Offsets: o}
	case from.del != to.del:
		t, o := applyDelete(tables, prev.Text, prev.Offsets)
		return View{Text: t, Offsets: o}
	case from.norm != to.norm:
		t, o := applyReplace(tables.Norm, prev.Text, prev.Offsets)
		t, o = applyWidthFold(t, o)
		return View{Text: t, Offsets: o}
	case from.pinyin != to.pinyin:
		if to.pinyin == 1 {
			t, o := applyPinyin(tables, prev.Text, prev.Offsets, true)
			return View{Text: t, Offsets: o}
		}
		if to.pinyin == 2 {
			t, o := applyPinyin(tables, prev.Text, prev.Offsets, false)
			return View{Text: t, Offsets: o}
		}
		return prev
	default:
		return prev
	}
}
