package helpers

import "testing"

func TestValidateProxy(t *testing.T) {
	cases := map[string]bool{
		"http://10.0.0.1:8080":    true,
		"10.0.0.1:3128":           true,
		"socks5://127.0.0.1:1080": true,
		"ftp://10.0.0.1:21":       false,
		"":                        false,
	}
	for in, want := range cases {
		if got := ValidateProxy(in); got != want {
			t.Errorf("ValidateProxy(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProxyManager_Rotate(t *testing.T) {
	pm := NewProxyManager([]string{"10.0.0.1:8080", "bogus://x", "http://10.0.0.2:8080"}, "", nil)
	if !pm.HasProxies() {
		t.Fatal("expected proxies")
	}

	first, _ := pm.GetCurrentProxy()
	if first != "http://10.0.0.1:8080" {
		t.Fatalf("unexpected first proxy %q", first)
	}
	pm.RotateProxy()
	second, _ := pm.GetCurrentProxy()
	if second != "http://10.0.0.2:8080" {
		t.Fatalf("unexpected second proxy %q", second)
	}
	pm.RotateProxy()
	if again, _ := pm.GetCurrentProxy(); again != first {
		t.Errorf("expected rotation to wrap, got %q", again)
	}
}

func TestProxyManager_PinnedUserAgent(t *testing.T) {
	pm := NewProxyManager(nil, "sp500-dashboard/1.0", nil)
	if pm.HasProxies() {
		t.Error("expected no proxies")
	}
	if ua := pm.GetUserAgent(); ua != "sp500-dashboard/1.0" {
		t.Errorf("unexpected user agent %q", ua)
	}
	if p, err := pm.GetCurrentProxy(); p != "" || err != nil {
		t.Errorf("expected empty proxy, got %q %v", p, err)
	}
}
