package corefuncplugin

import "testing"

type testHandler struct{}

func (testHandler) Call(input WireValue, _ []WireValue) (CallReply, error) {
	return CallReply{Verdict: "satisfied", Output: input}, nil
}

func TestHandler_InterfaceSatisfied(t *testing.T) {
	var _ Handler = testHandler{}
}

func TestServe_PanicsWithoutHandler(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Serve should panic with a nil ServeConfig")
		}
	}()
	Serve(nil)
}

func TestServe_PanicsWithoutHandlerField(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Serve should panic with a nil Handler")
		}
	}()
	Serve(&ServeConfig{Handler: nil})
}
