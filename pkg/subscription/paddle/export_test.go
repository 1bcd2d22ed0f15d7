package paddle

var PortalLink = portalLink
