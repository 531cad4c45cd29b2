package matching

import (
	"fmt"
	"slices"
	"testing"

	domprof "github.com/kailas-cloud/matchmaker/internal/domain/profile"
)

func TestPartition_Scenario(t *testing.T) {
	r := requester("me", 30, "서울", prefs("여자", domprof.IntPtr(25), domprof.IntPtr(35), "서울"))
	a := person("a", 28, "여자", "서울")
	b := person("b", 28, "남자", "서울")
	c := person("c", 40, "여자", "서울")

	compatible, other := Partition(r, []domprof.Profile{a, b, c})
	if got := ids(compatible); !slices.Equal(got, []string{"a"}) {
		t.Errorf("compatible = %v, want [a]", got)
	}
	if got := ids(other); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("other = %v, want [b c]", got)
	}
}

func TestPartition_ExcludesRequesterAndIsComplete(t *testing.T) {
	genders := []string{"남자", "여자", "기타"}
	locations := []string{"서울", "부산", ""}
	pool := make([]domprof.Profile, 0, 31)
	for i := range 30 {
		pool = append(pool, person(fmt.Sprintf("u%d", i), 18+i*3, genders[i%3], locations[i%3]))
	}

	for _, withSelf := range []bool{false, true} {
		r := requester("me", 30, "서울", prefs("여자", domprof.IntPtr(20), domprof.IntPtr(50), ""))
		input := pool
		if withSelf {
			input = append(slices.Clone(pool[:10]), r)
			input = append(input, pool[10:]...)
		}
		compatible, other := Partition(r, input)

		for _, p := range append(slices.Clone(compatible), other...) {
			if p.ID() == r.ID() {
				t.Fatalf("requester present in output (withSelf=%v)", withSelf)
			}
		}
		want := len(input)
		if withSelf {
			want--
		}
		if len(compatible)+len(other) != want {
			t.Errorf("withSelf=%v: %d + %d != %d", withSelf, len(compatible), len(other), want)
		}
	}
}

func TestPartition_WildcardGender(t *testing.T) {
	for _, wildcard := range []string{domprof.WildcardGender, "any", ""} {
		r := requester("me", 30, "서울", prefs(wildcard, nil, nil, ""))
		pool := []domprof.Profile{
			person("a", 30, "남자", "서울"),
			person("b", 30, "여자", "부산"),
			person("c", 30, "nonbinary", ""),
		}
		compatible, other := Partition(r, pool)
		if len(compatible) != 3 || len(other) != 0 {
			t.Errorf("wildcard %q: compatible=%v other=%v", wildcard, ids(compatible), ids(other))
		}
	}
}

func TestPartition_AgeBounds(t *testing.T) {
	pool := []domprof.Profile{
		person("young", 20, "여자", ""),
		person("mid", 30, "여자", ""),
		person("old", 60, "여자", ""),
	}
	tests := []struct {
		name   string
		lo, hi *int
		want   []string
	}{
		{"unbounded", nil, nil, []string{"young", "mid", "old"}},
		{"min only", domprof.IntPtr(30), nil, []string{"mid", "old"}},
		{"max only", nil, domprof.IntPtr(30), []string{"young", "mid"}},
		{"inclusive", domprof.IntPtr(20), domprof.IntPtr(30), []string{"young", "mid"}},
		{"inverted", domprof.IntPtr(40), domprof.IntPtr(25), []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := requester("me", 30, "", prefs("여자", tc.lo, tc.hi, ""))
			compatible, other := Partition(r, pool)
			if got := ids(compatible); !slices.Equal(got, tc.want) {
				t.Errorf("compatible = %v, want %v", got, tc.want)
			}
			if len(compatible)+len(other) != len(pool) {
				t.Errorf("partition lost entries")
			}
		})
	}
}

func TestPartition_Location(t *testing.T) {
	pool := []domprof.Profile{
		person("seoul", 30, "여자", "서울"),
		person("busan", 30, "여자", "부산"),
		person("blank", 30, "여자", ""),
	}

	anywhere := requester("me", 30, "서울", prefs("여자", nil, nil, ""))
	if c, _ := Partition(anywhere, pool); len(c) != 3 {
		t.Errorf("empty location should accept all, got %v", ids(c))
	}

	seoul := requester("me", 30, "서울", prefs("여자", nil, nil, "서울"))
	c, o := Partition(seoul, pool)
	if !slices.Equal(ids(c), []string{"seoul"}) || !slices.Equal(ids(o), []string{"busan", "blank"}) {
		t.Errorf("compatible=%v other=%v", ids(c), ids(o))
	}
}
