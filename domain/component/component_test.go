package component_test

import (
	"testing"

	"github.com/artpar/wxgate/domain/component"
)

func TestParse_VerifyTicket(t *testing.T) {
	doc := `<xml>
		<AppId><![CDATA[wx_component]]></AppId>
		<CreateTime>1633000000</CreateTime>
		<InfoType><![CDATA[component_verify_ticket]]></InfoType>
		<ComponentVerifyTicket><![CDATA[ticket@@@abc]]></ComponentVerifyTicket>
	</xml>`

	ev, err := component.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	vt, ok := ev.(*component.VerifyTicket)
	if !ok {
		t.Fatalf("Parse = %T, want *component.VerifyTicket", ev)
	}
	if vt.Type() != "component_verify_ticket" {
		t.Errorf("Type = %s", vt.Type())
	}
	if vt.AppID() != "wx_component" {
		t.Errorf("AppID = %s", vt.AppID())
	}
	if vt.Ticket() != "ticket@@@abc" {
		t.Errorf("Ticket = %s", vt.Ticket())
	}
	if vt.CreateTime().Unix() != 1633000000 {
		t.Errorf("CreateTime = %v", vt.CreateTime())
	}
}

func TestParse_Authorized(t *testing.T) {
	doc := `<xml>
		<AppId><![CDATA[wx_component]]></AppId>
		<InfoType><![CDATA[authorized]]></InfoType>
		<AuthorizerAppid><![CDATA[wx_authorizer]]></AuthorizerAppid>
		<AuthorizationCode><![CDATA[code-1]]></AuthorizationCode>
		<AuthorizationCodeExpiredTime><![CDATA[1633003600]]></AuthorizationCodeExpiredTime>
		<PreAuthCode><![CDATA[pre-1]]></PreAuthCode>
	</xml>`

	ev, err := component.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	a := ev.(*component.Authorized)
	if a.AuthorizerAppID() != "wx_authorizer" {
		t.Errorf("AuthorizerAppID = %s", a.AuthorizerAppID())
	}
	if a.AuthorizationCode() != "code-1" {
		t.Errorf("AuthorizationCode = %s", a.AuthorizationCode())
	}
	if a.PreAuthCode() != "pre-1" {
		t.Errorf("PreAuthCode = %s", a.PreAuthCode())
	}
}

func TestParse_UpdateAuthorized(t *testing.T) {
	doc := `<xml>
		<InfoType><![CDATA[updateauthorized]]></InfoType>
		<AuthorizerAppid><![CDATA[wx_a]]></AuthorizerAppid>
		<AuthorizationCode><![CDATA[code-2]]></AuthorizationCode>
	</xml>`

	ev, err := component.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	u := ev.(*component.UpdateAuthorized)
	if u.AuthorizerAppID() != "wx_a" || u.AuthorizationCode() != "code-2" {
		t.Errorf("UpdateAuthorized = %s / %s", u.AuthorizerAppID(), u.AuthorizationCode())
	}
}

func TestParse_Unauthorized(t *testing.T) {
	doc := `<xml>
		<InfoType><![CDATA[unauthorized]]></InfoType>
		<AuthorizerAppid><![CDATA[wx_gone]]></AuthorizerAppid>
	</xml>`

	ev, err := component.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	u := ev.(*component.Unauthorized)
	if u.AuthorizerAppID() != "wx_gone" {
		t.Errorf("AuthorizerAppID = %s", u.AuthorizerAppID())
	}
}

func TestParse_UnknownInfoTypeFallsBack(t *testing.T) {
	doc := `<xml>
		<AppId><![CDATA[wx_component]]></AppId>
		<InfoType><![CDATA[future_event]]></InfoType>
	</xml>`

	ev, err := component.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	unk, ok := ev.(*component.Unknown)
	if !ok {
		t.Fatalf("Parse = %T, want *component.Unknown", ev)
	}
	if unk.AppID() != "wx_component" {
		t.Errorf("AppID = %s, want wx_component", unk.AppID())
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := component.Parse("<notxml>"); err == nil {
		t.Fatal("malformed document should fail")
	}
}
