package recipe

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

// Models are loose with JSON types: "15" for a number, 25 for "25g". The
// lenient types below accept either form and never fail on a mismatch.

var leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

type lenientFloat float64

func (f *lenientFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = lenientFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if m := leadingNumber.FindString(s); m != "" {
			n, _ = strconv.ParseFloat(m, 64)
		}
	}
	*f = lenientFloat(n)
	return nil
}

type lenientInt int

func (i *lenientInt) UnmarshalJSON(b []byte) error {
	var f lenientFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*i = lenientInt(math.Round(float64(f)))
	return nil
}

type lenientString string

func (s *lenientString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = lenientString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*s = lenientString(n.String())
	}
	return nil
}

func (s *Step) UnmarshalJSON(b []byte) error {
	type plain Step
	aux := struct {
		*plain
		Step     lenientInt    `json:"step"`
		Duration lenientString `json:"duration"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.Step = int(aux.Step)
	s.Duration = string(aux.Duration)
	return nil
}

func (n *Nutrition) UnmarshalJSON(b []byte) error {
	type plain Nutrition
	aux := struct {
		*plain
		Calories lenientFloat  `json:"calories"`
		Protein  lenientString `json:"protein"`
		Carbs    lenientString `json:"carbs"`
		Fat      lenientString `json:"fat"`
		Fiber    lenientString `json:"fiber"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	n.Calories = float64(aux.Calories)
	n.Protein = string(aux.Protein)
	n.Carbs = string(aux.Carbs)
	n.Fat = string(aux.Fat)
	n.Fiber = string(aux.Fiber)
	return nil
}

func (g *GeneratedIngredient) UnmarshalJSON(b []byte) error {
	type plain GeneratedIngredient
	aux := struct {
		*plain
		Quantity lenientString `json:"quantity"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	g.Quantity = string(aux.Quantity)
	return nil
}

func (g *GeneratedRecipe) UnmarshalJSON(b []byte) error {
	type plain GeneratedRecipe
	aux := struct {
		*plain
		PrepTime    lenientInt `json:"prep_time"`
		CookingTime lenientInt `json:"cooking_time"`
		Servings    lenientInt `json:"servings"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	g.PrepTime = int(aux.PrepTime)
	g.CookingTime = int(aux.CookingTime)
	g.Servings = int(aux.Servings)
	return nil
}
