package materials

import "testing"

func TestUnitValid(t *testing.T) {
	valid := []string{"adet", "kutu", "metre", "kg"}
	for _, u := range valid {
		if !unitValid(u) {
			t.Errorf("unitValid(%q) = false, beklenen true", u)
		}
	}

	invalid := []string{"", "5 adet", "kutu12", "3"}
	for _, u := range invalid {
		if unitValid(u) {
			t.Errorf("unitValid(%q) = true, beklenen false", u)
		}
	}
}
