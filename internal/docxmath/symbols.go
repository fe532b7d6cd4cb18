// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docxmath

import "strings"

// accents maps combining and grouping characters to LaTeX commands taking
// the accented expression as their argument.
var accents = map[rune]string{
	'\u0300': `\grave`,
	'\u0301': `\acute`,
	'\u0302': `\hat`,
	'\u0303': `\tilde`,
	'\u0304': `\bar`,
	'\u0305': `\overline`,
	'\u0306': `\breve`,
	'\u0307': `\dot`,
	'\u0308': `\ddot`,
	'\u030c': `\check`,
	'\u0331': `\underline`,
	'\u20d6': `\overleftarrow`,
	'\u20d7': `\vec`,
	'\u20db': `\dddot`,
	'\u20e1': `\overleftrightarrow`,
	'⎴': `\overbracket`,
	'⎵': `\underbracket`,
	'⏜': `\overparen`,
	'⏝': `\underparen`,
	'⏞': `\overbrace`,
	'⏟': `\underbrace`,
}

// bigOperators maps n-ary operator characters to LaTeX commands.
var bigOperators = map[rune]string{
	'∏': `\prod`,
	'∐': `\coprod`,
	'∑': `\sum`,
	'∫': `\int`,
	'∬': `\iint`,
	'∭': `\iiint`,
	'∮': `\oint`,
	'⋀': `\bigwedge`,
	'⋁': `\bigvee`,
	'⋂': `\bigcap`,
	'⋃': `\bigcup`,
	'⨀': `\bigodot`,
	'⨁': `\bigoplus`,
	'⨂': `\bigotimes`,
}

var namedFuncs = map[string]struct{}{
	"sin": {}, "cos": {}, "tan": {}, "cot": {}, "sec": {}, "csc": {},
	"arcsin": {}, "arccos": {}, "arctan": {},
	"sinh": {}, "cosh": {}, "tanh": {}, "coth": {},
	"log": {}, "ln": {}, "exp": {},
}

var limitFuncs = map[string]struct{}{"lim": {}, "max": {}, "min": {}, "sup": {}, "inf": {}}

// operators maps symbols outside the mathematical alphanumeric block.
var operators = map[rune]string{
	'±': `\pm`,
	'×': `\times`,
	'÷': `\div`,
	'←': `\leftarrow`,
	'↑': `\uparrow`,
	'→': `\rightarrow`,
	'↓': `\downarrow`,
	'↔': `\leftrightarrow`,
	'⇒': `\Rightarrow`,
	'⇔': `\Leftrightarrow`,
	'∀': `\forall`,
	'∂': `\partial`,
	'∃': `\exists`,
	'∅': `\emptyset`,
	'∇': `\nabla`,
	'∈': `\in`,
	'∉': `\notin`,
	'∋': `\ni`,
	'∓': `\mp`,
	'∘': `\circ`,
	'√': `\surd`,
	'∞': `\infty`,
	'∧': `\wedge`,
	'∨': `\vee`,
	'∩': `\cap`,
	'∪': `\cup`,
	'≈': `\approx`,
	'≠': `\ne`,
	'≡': `\equiv`,
	'≤': `\leq`,
	'≥': `\geq`,
	'≪': `\ll`,
	'≫': `\gg`,
	'⊂': `\subset`,
	'⊃': `\supset`,
	'⊆': `\subseteq`,
	'⊇': `\supseteq`,
	'⋅': `\cdot`,
	'⋮': `\vdots`,
	'⋯': `\cdots`,
	'⋱': `\ddots`,
}

// greek lists the LaTeX names of the lowercase Greek letters in Unicode
// order starting at alpha. Final sigma maps to varsigma.
var greek = []string{
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
	"iota", "kappa", "lambda", "mu", "nu", "xi", "omicron", "pi", "rho",
	"varsigma", "sigma", "tau", "upsilon", "phi", "chi", "psi", "omega",
}

// symbol renders one character of an equation run.
func symbol(r rune) string {
	if strings.ContainsRune(specialChars, r) {
		return `\` + string(r)
	}
	switch r {
	case 'ℎ':
		// Planck constant, used by Word for math italic h.
		return "h"
	}
	if cmd, ok := operators[r]; ok {
		return cmd + " "
	}
	switch {
	case r >= '\U0001d434' && r <= '\U0001d44d':
		// Mathematical italic capitals.
		return string('A' + (r - '\U0001d434'))
	case r >= '\U0001d44e' && r <= '\U0001d467':
		return string('a' + (r - '\U0001d44e'))
	case r >= 'α' && r <= 'ω':
		return greekCommand(int(r - 'α'))
	case r >= '\U0001d6fc' && r <= '\U0001d714':
		// Mathematical italic small alpha to omega.
		return greekCommand(int(r - '\U0001d6fc'))
	}
	return string(r)
}

func greekCommand(i int) string {
	name := greek[i]
	if name == "omicron" {
		return "o"
	}
	return `\` + name + " "
}

// specialChars have a meaning in LaTeX and are escaped in text.
const specialChars = "{}_^#&$%~"

func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
