package speech

import "testing"

func TestCleanUtterance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips markdown emphasis",
			in:   "Ecco il tuo *primo* **desiderio**!",
			want: "Ecco il tuo primo desiderio!",
		},
		{
			name: "strips onomatopoeia",
			in:   "POOOOF! Eccomi qui!",
			want: "Eccomi qui!",
		},
		{
			name: "strips emoji",
			in:   "✨ Magia pura 🔮💨",
			want: "Magia pura",
		},
		{
			name: "only stage effects",
			in:   "POOOOF! ✨🧞‍♂️",
			want: "",
		},
		{
			name: "plain text untouched",
			in:   "Tre desideri, come da tradizione.",
			want: "Tre desideri, come da tradizione.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanUtterance(tt.in); got != tt.want {
				t.Fatalf("CleanUtterance(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
